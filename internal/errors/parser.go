package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed storage error
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts storage-layer errors into stable codes without leaking
// driver details to the caller. context is a short hint like "wishlist" or
// "item create" used to pick the message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	errStrLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    notFoundCode(context),
			Message: notFoundMessage(context),
		}
	}

	// Postgres unique constraint violation (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		if strings.Contains(errStrLower, "email") {
			return ErrorInfo{
				Code:    AuthEmailAlreadyExists,
				Message: "An account with this email already exists",
			}
		}
		if strings.Contains(errStrLower, "public_slug") {
			return ErrorInfo{
				Code:    InternalDatabaseError,
				Message: "Could not allocate a public link, please try again",
			}
		}
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "This record already exists",
		}
	}

	// Postgres foreign key violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    notFoundCode(context),
			Message: "Referenced record no longer exists",
		}
	}

	// Connection problems: fatal to the request, caller may retry with backoff
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "Storage is temporarily unavailable, please retry",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Something went wrong, please try again later",
	}
}

// ParseAndRespond parses a storage error and writes the envelope in one call
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	if strings.Contains(contextLower, "wishlist") {
		return WishlistNotFound
	}
	if strings.Contains(contextLower, "item") {
		return ItemNotFound
	}
	return ResourceNotFound
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	if strings.Contains(contextLower, "wishlist") {
		return "Wishlist not found"
	}
	if strings.Contains(contextLower, "item") {
		return "Item not found"
	}
	return "Requested record not found"
}
