// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyInternalError = "error.internal"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Furniture
	KeyFurnitureCreated  = "furniture.created"
	KeyFurnitureUpdated  = "furniture.updated"
	KeyFurnitureDeleted  = "furniture.deleted"
	KeyFurnitureNotFound = "furniture.not_found"

	// Taxonomy
	KeyCategorySaved   = "category.saved"
	KeyCategoryDeleted = "category.deleted"
	KeyTagSaved        = "tag.saved"
	KeyTagDeleted      = "tag.deleted"
	KeyTagGroupSaved   = "tag_group.saved"
	KeyTagGroupDeleted = "tag_group.deleted"

	// Submissions
	KeySubmissionCreated   = "submission.created"
	KeySubmissionUpdated   = "submission.updated"
	KeySubmissionCancelled = "submission.cancelled"
	KeySubmissionApproved  = "submission.approved"
	KeySubmissionRejected  = "submission.rejected"
	KeySubmissionDuplicate = "submission.possible_duplicates"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Search
	KeySearchNoResults = "search.no_results"
	KeySearchAlso      = "search.also_searching"

	// Rate limiting
	KeyRateLimited = "rate_limit.exceeded"
)
