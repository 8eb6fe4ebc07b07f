// Package shared holds the value objects and building blocks every domain
// aggregate (page, site, keyword, task) is built from: identifiers, an
// optimistic-locking Version, and the DomainEvent contract.
package shared

import (
	"github.com/google/uuid"

	"ingestgraph/internal/ingesterrors"
)

// PageID uniquely identifies a Page aggregate.
type PageID struct {
	value string
}

// NewPageID creates a new random PageID.
func NewPageID() PageID {
	return PageID{value: uuid.New().String()}
}

// ParsePageID validates and wraps an existing UUID string.
func ParsePageID(id string) (PageID, error) {
	if _, err := uuid.Parse(id); err != nil {
		return PageID{}, ingesterrors.Validation(string(ingesterrors.CodeInvalidPageID), "invalid page id: must be a valid UUID").
			WithDetails(id).Build()
	}
	return PageID{value: id}, nil
}

func (id PageID) String() string           { return id.value }
func (id PageID) Equals(other PageID) bool  { return id.value == other.value }
func (id PageID) IsEmpty() bool             { return id.value == "" }

// SiteID uniquely identifies a Site aggregate. It is a random UUID, not
// derived from the site's domain.
type SiteID struct {
	value string
}

// NewSiteID creates a new random SiteID.
func NewSiteID() SiteID {
	return SiteID{value: uuid.New().String()}
}

// ParseSiteID validates and wraps an existing UUID string.
func ParseSiteID(id string) (SiteID, error) {
	if _, err := uuid.Parse(id); err != nil {
		return SiteID{}, ingesterrors.Validation(string(ingesterrors.CodeInvalidSiteID), "invalid site id: must be a valid UUID").
			WithDetails(id).Build()
	}
	return SiteID{value: id}, nil
}

func (id SiteID) String() string          { return id.value }
func (id SiteID) Equals(other SiteID) bool { return id.value == other.value }
func (id SiteID) IsEmpty() bool            { return id.value == "" }

// KeywordID uniquely identifies a keyword. Unlike PageID/SiteID it is NOT
// random: identity is derived deterministically from (canonical_text, type)
// by the keyword engine, so two extractions of the same keyword collapse to
// one node. NewKeywordID accepts any non-empty string here; the
// keywordmodel package owns the derivation rule.
type KeywordID struct {
	value string
}

// NewKeywordID wraps a pre-computed deterministic identifier.
func NewKeywordID(id string) (KeywordID, error) {
	if id == "" {
		return KeywordID{}, ingesterrors.Validation(string(ingesterrors.CodeInvalidKeywordID), "keyword id cannot be empty").Build()
	}
	return KeywordID{value: id}, nil
}

func (id KeywordID) String() string            { return id.value }
func (id KeywordID) Equals(other KeywordID) bool { return id.value == other.value }
func (id KeywordID) IsEmpty() bool              { return id.value == "" }

// TaskID uniquely identifies a submitted ingestion task.
type TaskID struct {
	value string
}

// NewTaskID creates a new random TaskID.
func NewTaskID() TaskID {
	return TaskID{value: uuid.New().String()}
}

// ParseTaskID validates and wraps an existing UUID string.
func ParseTaskID(id string) (TaskID, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TaskID{}, ingesterrors.Validation(string(ingesterrors.CodeInvalidTaskID), "invalid task id: must be a valid UUID").
			WithDetails(id).Build()
	}
	return TaskID{value: id}, nil
}

func (id TaskID) String() string          { return id.value }
func (id TaskID) Equals(other TaskID) bool { return id.value == other.value }
func (id TaskID) IsEmpty() bool            { return id.value == "" }
