package service

import (
	"time"

	"github.com/giftwish/giftwish-backend/internal/app/model"
	"github.com/giftwish/giftwish-backend/internal/funding"
)

// Projections are read-only shapes re-derived from ledger rows on every
// request. Nothing here is stored: collected/remaining/percent always come
// out of the funding calculator, and identity redaction happens before the
// data leaves the server.

// PublicContribution hides the contributor's name when the pledge is
// anonymous. The raw name never transits to a viewer.
type PublicContribution struct {
	ID              uint      `json:"id"`
	AmountCents     int64     `json:"amount_cents"`
	ContributorName string    `json:"contributor_name,omitempty"`
	IsAnonymous     bool      `json:"is_anonymous"`
	CreatedAt       time.Time `json:"created_at"`
}

type PublicReservation struct {
	ID           uint      `json:"id"`
	ReserverName string    `json:"reserver_name"`
	Message      string    `json:"message,omitempty"`
	IsGroup      bool      `json:"is_group"`
	CreatedAt    time.Time `json:"created_at"`
}

type PublicItem struct {
	ID                   uint                 `json:"id"`
	Title                string               `json:"title"`
	URL                  string               `json:"url,omitempty"`
	ImageURL             string               `json:"image_url,omitempty"`
	PriceCents           *int64               `json:"price_cents,omitempty"`
	AllowGroupFunding    bool                 `json:"allow_group_funding"`
	TargetAmountCents    *int64               `json:"target_amount_cents,omitempty"`
	MinContributionCents *int64               `json:"min_contribution_cents,omitempty"`
	SourceUnavailable    bool                 `json:"source_unavailable"`
	Reservations         []PublicReservation  `json:"reservations"`
	Contributions        []PublicContribution `json:"contributions"`
	Funding              funding.Summary      `json:"funding"`
}

type PublicWishlist struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	EventDate   *time.Time   `json:"event_date,omitempty"`
	PublicSlug  string       `json:"public_slug"`
	CreatedAt   time.Time    `json:"created_at"`
	Items       []PublicItem `json:"items"`
}

// OwnerItem deliberately omits who reserved: the owner sees counts and
// amounts, never reserver identities, so the surprise survives any UI built
// on this projection.
type OwnerItem struct {
	ID                   uint            `json:"id"`
	Title                string          `json:"title"`
	URL                  string          `json:"url,omitempty"`
	ImageURL             string          `json:"image_url,omitempty"`
	PriceCents           *int64          `json:"price_cents,omitempty"`
	AllowGroupFunding    bool            `json:"allow_group_funding"`
	TargetAmountCents    *int64          `json:"target_amount_cents,omitempty"`
	MinContributionCents *int64          `json:"min_contribution_cents,omitempty"`
	SourceUnavailable    bool            `json:"source_unavailable"`
	ReservedCount        int             `json:"reserved_count"`
	Funding              funding.Summary `json:"funding"`
}

type OwnerWishlist struct {
	ID          uint        `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	EventDate   *time.Time  `json:"event_date,omitempty"`
	PublicSlug  string      `json:"public_slug"`
	IsPublic    bool        `json:"is_public"`
	CreatedAt   time.Time   `json:"created_at"`
	Items       []OwnerItem `json:"items"`
}

func itemFunding(item *model.Item) funding.Summary {
	amounts := make([]int64, 0, len(item.Contributions))
	for _, c := range item.Contributions {
		amounts = append(amounts, c.AmountCents)
	}
	return funding.Summarize(funding.EffectiveTarget(item.TargetAmountCents, item.PriceCents), amounts)
}

func projectPublicItem(item *model.Item) PublicItem {
	reservations := make([]PublicReservation, 0, len(item.Reservations))
	for _, r := range item.Reservations {
		reservations = append(reservations, PublicReservation{
			ID:           r.ID,
			ReserverName: r.ReserverName,
			Message:      r.Message,
			IsGroup:      r.IsGroup,
			CreatedAt:    r.CreatedAt,
		})
	}

	contributions := make([]PublicContribution, 0, len(item.Contributions))
	for _, c := range item.Contributions {
		name := c.ContributorName
		if c.IsAnonymous {
			name = ""
		}
		contributions = append(contributions, PublicContribution{
			ID:              c.ID,
			AmountCents:     c.AmountCents,
			ContributorName: name,
			IsAnonymous:     c.IsAnonymous,
			CreatedAt:       c.CreatedAt,
		})
	}

	return PublicItem{
		ID:                   item.ID,
		Title:                item.Title,
		URL:                  item.URL,
		ImageURL:             item.ImageURL,
		PriceCents:           item.PriceCents,
		AllowGroupFunding:    item.AllowGroupFunding,
		TargetAmountCents:    item.TargetAmountCents,
		MinContributionCents: item.MinContributionCents,
		SourceUnavailable:    item.SourceUnavailable,
		Reservations:         reservations,
		Contributions:        contributions,
		Funding:              itemFunding(item),
	}
}

// ProjectPublicWishlist builds the anonymized viewer-facing snapshot
func ProjectPublicWishlist(wishlist *model.Wishlist) *PublicWishlist {
	items := make([]PublicItem, 0, len(wishlist.Items))
	for i := range wishlist.Items {
		items = append(items, projectPublicItem(&wishlist.Items[i]))
	}

	return &PublicWishlist{
		ID:          wishlist.ID,
		Title:       wishlist.Title,
		Description: wishlist.Description,
		EventDate:   wishlist.EventDate,
		PublicSlug:  wishlist.PublicSlug,
		CreatedAt:   wishlist.CreatedAt,
		Items:       items,
	}
}

// ProjectOwnerWishlist builds the owner-facing snapshot with aggregates only
func ProjectOwnerWishlist(wishlist *model.Wishlist) *OwnerWishlist {
	items := make([]OwnerItem, 0, len(wishlist.Items))
	for i := range wishlist.Items {
		item := &wishlist.Items[i]
		items = append(items, OwnerItem{
			ID:                   item.ID,
			Title:                item.Title,
			URL:                  item.URL,
			ImageURL:             item.ImageURL,
			PriceCents:           item.PriceCents,
			AllowGroupFunding:    item.AllowGroupFunding,
			TargetAmountCents:    item.TargetAmountCents,
			MinContributionCents: item.MinContributionCents,
			SourceUnavailable:    item.SourceUnavailable,
			ReservedCount:        len(item.Reservations),
			Funding:              itemFunding(item),
		})
	}

	return &OwnerWishlist{
		ID:          wishlist.ID,
		Title:       wishlist.Title,
		Description: wishlist.Description,
		EventDate:   wishlist.EventDate,
		PublicSlug:  wishlist.PublicSlug,
		IsPublic:    wishlist.IsPublic,
		CreatedAt:   wishlist.CreatedAt,
		Items:       items,
	}
}
