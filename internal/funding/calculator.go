// Package funding holds the pure arithmetic behind group funding. Everything
// here is integer math on minor currency units; results are always re-derived
// from the stored contributions, never cached.
package funding

// Summary is the funding state of one item at a point in time
type Summary struct {
	Collected int64 `json:"collected_amount_cents"`
	Remaining int64 `json:"remaining_amount_cents"`
	Percent   int64 `json:"percent"`
}

// Summarize folds a contribution set into collected/remaining/percent.
// target <= 0 means the item has no funding bound: remaining stays 0 and
// percent is 0 regardless of what was collected.
func Summarize(target int64, amounts []int64) Summary {
	var collected int64
	for _, a := range amounts {
		collected += a
	}

	s := Summary{Collected: collected}
	if target > 0 {
		if collected < target {
			s.Remaining = target - collected
		}
		s.Percent = roundDiv(100*collected, target)
		if s.Percent > 100 {
			s.Percent = 100
		}
	}
	return s
}

// EffectiveTarget resolves the funding target: explicit target, else price,
// else 0 (unbounded).
func EffectiveTarget(targetCents, priceCents *int64) int64 {
	if targetCents != nil && *targetCents > 0 {
		return *targetCents
	}
	if priceCents != nil && *priceCents > 0 {
		return *priceCents
	}
	return 0
}

// DefaultMinimum is the policy default for min_contribution when the owner
// does not set one: 10% of the effective target, rounded. Returns 0 when
// there is no target to take a percentage of.
func DefaultMinimum(effectiveTarget int64) int64 {
	if effectiveTarget <= 0 {
		return 0
	}
	return roundDiv(effectiveTarget, 10)
}

// roundDiv divides with round-half-up semantics for non-negative operands
func roundDiv(numerator, denominator int64) int64 {
	return (numerator + denominator/2) / denominator
}
