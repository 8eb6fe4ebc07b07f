// Package dynamodb is a single-table DynamoDB implementation of
// graphstore.GraphStore, grounded on the teacher's
// internal/infrastructure/persistence/dynamodb package: the same
// USER#/NODE#/EDGE# partition-and-sort-key convention, retargeted to
// SITE#/PAGE#/KEYWORD#/REL#.
package dynamodb

import "fmt"

// BuildSitePK constructs a site partition key: SITE#{siteID}.
func BuildSitePK(siteID string) string { return fmt.Sprintf("SITE#%s", siteID) }

// BuildPageSK constructs a page sort key scoped under its site: PAGE#{pageID}.
func BuildPageSK(pageID string) string { return fmt.Sprintf("PAGE#%s", pageID) }

// BuildPagePK constructs a page's own partition key, used for direct lookup
// by id and for the URL lookup GSI.
func BuildPagePK(pageID string) string { return fmt.Sprintf("PAGE#%s", pageID) }

// BuildMetaSK is the sort key for an entity's own metadata item.
const BuildMetaSK = "META"

// BuildKeywordPK constructs a keyword partition key: KEYWORD#{keywordID}.
func BuildKeywordPK(keywordID string) string { return fmt.Sprintf("KEYWORD#%s", keywordID) }

// BuildRelationshipSK constructs a relationship sort key scoped under its
// source keyword: REL#{type}#{targetID}.
func BuildRelationshipSK(relType, targetID string) string {
	return fmt.Sprintf("REL#%s#%s", relType, targetID)
}

// BuildTaskPK constructs a task partition key: TASK#{taskID}.
func BuildTaskPK(taskID string) string { return fmt.Sprintf("TASK#%s", taskID) }

const (
	entityTypeSite         = "SITE"
	entityTypePage         = "PAGE"
	entityTypeRelationship = "RELATIONSHIP"
	entityTypeTask         = "TASK"
	// entityTypeContains marks the site->page CONTAINS link item, stored at
	// PK=SITE#{siteID}, SK=PAGE#{pageID} (spec.md §3/§6).
	entityTypeContains = "CONTAINS"

	urlIndexName = "url-index"
)
