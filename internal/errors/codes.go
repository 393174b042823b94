package errors

// Error code constants returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. The frontend maps these codes to copy.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed or forged token
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email
	AuthResetTokenInvalid  = "AUTH_RESET_TOKEN_INVALID" // unknown or used reset token
	AuthResetTokenExpired  = "AUTH_RESET_TOKEN_EXPIRED" // reset token past its deadline

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN" // not the owner of the resource

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // malformed request body
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // non-numeric path id
	ValidationInvalidURL   = "VALIDATION_INVALID_URL"   // preview url not http(s)

	// ==================== Resources (RESOURCE_) ====================
	WishlistNotFound = "WISHLIST_NOT_FOUND" // unknown wishlist id/slug
	ItemNotFound     = "ITEM_NOT_FOUND"     // unknown or deleted item
	ResourceNotFound = "RESOURCE_NOT_FOUND" // generic fallback

	// ==================== Reservations (RESERVATION_) ====================
	ReservationAlreadyReserved = "RESERVATION_ALREADY_RESERVED" // item claimed by someone else
	ReservationGroupItem       = "RESERVATION_GROUP_ITEM"       // group items take contributions, not reservations

	// ==================== Group funding (FUNDING_) ====================
	FundingDisabled         = "FUNDING_DISABLED"          // item does not allow group funding
	FundingComplete         = "FUNDING_COMPLETE"          // target already collected
	FundingBelowMinimum     = "FUNDING_BELOW_MINIMUM"     // amount under the effective minimum
	FundingExceedsRemaining = "FUNDING_EXCEEDS_REMAINING" // amount over what is left to collect

	// ==================== Items (ITEM_) ====================
	ItemGroupFundingLocked = "ITEM_GROUP_FUNDING_LOCKED" // cannot disable group funding with contributions on record

	// ==================== Link preview (PREVIEW_) ====================
	PreviewFetchFailed = "PREVIEW_FETCH_FAILED" // remote page unreachable or not HTML

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
