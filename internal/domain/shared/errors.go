package shared

import "ingestgraph/internal/ingesterrors"

// Domain-level sentinel errors, built on the unified ingesterrors taxonomy
// so callers can use errors.As(err, &ingesterrors.Error{}) uniformly
// regardless of which aggregate raised them.
var (
	ErrInvalidPageID = ingesterrors.Validation(string(ingesterrors.CodeInvalidPageID), "invalid page id").Build()
	ErrPageNotFound  = ingesterrors.New(ingesterrors.KindValidation, string(ingesterrors.CodePageNotFound), "page not found").
				WithSeverity(ingesterrors.SeverityLow).Build()
	ErrPageAlreadyArchived = ingesterrors.New(ingesterrors.KindValidation, string(ingesterrors.CodePageArchived), "cannot transition an archived/error page").
				WithSeverity(ingesterrors.SeverityMedium).Build()

	ErrInvalidSiteID = ingesterrors.Validation(string(ingesterrors.CodeInvalidSiteID), "invalid site id").Build()
	ErrSiteNotFound  = ingesterrors.New(ingesterrors.KindValidation, string(ingesterrors.CodeSiteNotFound), "site not found").
				WithSeverity(ingesterrors.SeverityLow).Build()

	ErrInvalidKeywordID  = ingesterrors.Validation(string(ingesterrors.CodeInvalidKeywordID), "invalid keyword id").Build()
	ErrKeywordNotFound   = ingesterrors.New(ingesterrors.KindValidation, string(ingesterrors.CodeKeywordNotFound), "keyword not found").
				WithSeverity(ingesterrors.SeverityLow).Build()
	ErrRelationshipSelfLoop = ingesterrors.New(ingesterrors.KindValidation, string(ingesterrors.CodeRelationshipSelfLoop), "a relationship cannot connect a keyword to itself").
				WithSeverity(ingesterrors.SeverityLow).Build()

	ErrInvalidTaskID = ingesterrors.Validation(string(ingesterrors.CodeInvalidTaskID), "invalid task id").Build()
	ErrTaskNotFound  = ingesterrors.New(ingesterrors.KindValidation, string(ingesterrors.CodeTaskNotFound), "task not found").
				WithSeverity(ingesterrors.SeverityLow).Build()

	ErrEmptyContent   = ingesterrors.Validation(string(ingesterrors.CodeContentEmpty), "content cannot be empty").Build()
	ErrContentTooLong = ingesterrors.Validation(string(ingesterrors.CodeContentTooLong), "content exceeds maximum length").Build()
)

// MaxContentLength is an upper bound on page content length, after the
// teacher's bound on node content. No pipeline stage or store write checks
// it: long pages are neither truncated nor rejected.
const MaxContentLength = 1_000_000
