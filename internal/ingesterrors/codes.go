package ingesterrors

// Code is a stable, machine-checkable error code for programmatic handling.
type Code string

const (
	CodeInvalidPageID     Code = "INVALID_PAGE_ID"
	CodePageNotFound      Code = "PAGE_NOT_FOUND"
	CodePageAlreadyExists Code = "PAGE_ALREADY_EXISTS"
	CodePageArchived      Code = "PAGE_ARCHIVED"

	CodeInvalidSiteID Code = "INVALID_SITE_ID"
	CodeSiteNotFound  Code = "SITE_NOT_FOUND"

	CodeInvalidKeywordID     Code = "INVALID_KEYWORD_ID"
	CodeKeywordNotFound      Code = "KEYWORD_NOT_FOUND"
	CodeRelationshipInvalid  Code = "RELATIONSHIP_INVALID"
	CodeRelationshipSelfLoop Code = "RELATIONSHIP_SELF_LOOP"

	CodeInvalidTaskID Code = "INVALID_TASK_ID"
	CodeTaskNotFound  Code = "TASK_NOT_FOUND"

	CodeContentEmpty   Code = "CONTENT_EMPTY"
	CodeContentTooLong Code = "CONTENT_TOO_LONG"

	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeMissingField     Code = "MISSING_FIELD"
	CodeInvalidFormat    Code = "INVALID_FORMAT"
	CodeInvalidUUID      Code = "INVALID_UUID"

	CodeStageTimeout    Code = "STAGE_TIMEOUT"
	CodeStageAborted    Code = "STAGE_ABORTED"
	CodeComponentFailed Code = "COMPONENT_FAILED"

	CodeStoreQueryTimeout   Code = "STORE_QUERY_TIMEOUT"
	CodeStoreQueryExecution Code = "STORE_QUERY_EXECUTION"
	CodeStoreInvalidTxn     Code = "STORE_INVALID_TRANSACTION"
	CodeSchemaMismatch      Code = "SCHEMA_MISMATCH"

	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
