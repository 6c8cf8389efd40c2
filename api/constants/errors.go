package constants

// ============================================================================
// AUTHENTICATION & SESSION ERRORS
// ============================================================================

const (
	ErrMissingUserID  = "user_id is required in the request"
	ErrInvalidSession = "Your session has expired or is invalid. Please login again"
	ErrUnauthorized   = "You are not authorized to perform this action"
)

// ============================================================================
// VALIDATION ERRORS - Agency scope
// ============================================================================

const (
	ErrUserNotFound       = "User not found in the system"
	ErrNoAgency           = "User has no agency assigned. Please contact administrator"
	ErrAgencyNotFound     = "Agency not found or you don't have access to it"
	ErrInvalidRequestBody = "Invalid request body"
)

// ============================================================================
// UPLOAD ERRORS
// ============================================================================

const (
	ErrNoFilesUploaded   = "No files uploaded"
	ErrUnsupportedFile   = "Unsupported file type. Only .csv, .xlsx and .xls files are accepted"
	ErrEmptyFile         = "File has no data rows"
	ErrNoHeaderRow       = "File has no header row"
	ErrParseTimeout      = "Parsing timed out. Try again with a smaller file"
	ErrUploadNotFound    = "Upload not found"
	ErrMappingIncomplete = "Column mapping is missing required fields"
)

// ============================================================================
// MASTER DATA ERRORS
// ============================================================================

const (
	ErrLeadSourceNotFound = "Lead source not found"
	ErrBucketNotFound     = "Marketing bucket not found"
	ErrTeamMemberNotFound = "Team member not found"
	ErrHouseholdNotFound  = "Household not found"
)
