package components

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"ingestgraph/internal/domain/page"
	"ingestgraph/internal/domain/stage"
	"ingestgraph/internal/ingesterrors"
)

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	scriptOpenRe  = regexp.MustCompile(`(?is)<script[\s>]`)
	tagOpenRe     = regexp.MustCompile(`(?s)<[a-zA-Z][^>]*>`)
	tagRe         = regexp.MustCompile(`(?s)<[^>]+>`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	looksLikeHTML = regexp.MustCompile(`(?is)<html[\s>]|<body[\s>]|<!doctype html`)
	pdfMagic      = "%PDF-"
)

// ContentComponent cleans a page's raw content into the plain text the
// keyword engine consumes, and classifies its SourceType (spec.md §4.4
// content stage). AttachContent's transient raw field is replaced in place:
// the storage stage never persists it regardless (spec.md §4.6 step 2).
type ContentComponent struct {
	minContentLength    int
	skipDomains         map[string]bool
	complexDOMThreshold int
	maxJSScripts        int
}

// NewContentComponent constructs a ContentComponent. minContentLength is the
// minimum accepted raw-content length in bytes (spec.md Scenario S2).
// skipDomains, complexDOMThreshold and maxJSScripts are the keyword-engine
// config surface's source-complexity guards (spec.md §6): a page whose
// domain is listed, whose tag count exceeds complexDOMThreshold, or whose
// script count exceeds maxJSScripts is rejected rather than fed to the
// keyword engine on content it can't reliably extract from. Zero thresholds
// disable the corresponding guard.
func NewContentComponent(minContentLength int, skipDomains []string, complexDOMThreshold, maxJSScripts int) *ContentComponent {
	skip := make(map[string]bool, len(skipDomains))
	for _, d := range skipDomains {
		skip[strings.ToLower(strings.TrimSpace(d))] = true
	}
	return &ContentComponent{
		minContentLength:    minContentLength,
		skipDomains:         skip,
		complexDOMThreshold: complexDOMThreshold,
		maxJSScripts:        maxJSScripts,
	}
}

func (c *ContentComponent) Kind() stage.ComponentKind { return stage.KindContent }
func (c *ContentComponent) Name() string              { return "content_cleaner" }

func (c *ContentComponent) Validate(ctx context.Context, p *page.Page) (bool, error) {
	if c.skipDomains[strings.ToLower(p.Domain)] {
		return false, ingesterrors.Validation(string(ingesterrors.CodeInvalidFormat),
			fmt.Sprintf("domain %q is in the skip list", p.Domain)).WithStage(string(stage.Content)).Build()
	}

	raw := p.RawContent()
	if strings.TrimSpace(raw) == "" {
		return false, ingesterrors.Validation(string(ingesterrors.CodeMissingField), "raw content is empty").WithStage(string(stage.Content)).Build()
	}
	if c.minContentLength > 0 && len(raw) < c.minContentLength {
		return false, ingesterrors.Validation(string(ingesterrors.CodeInvalidFormat),
			fmt.Sprintf("content length %d is below minimum %d", len(raw), c.minContentLength)).WithStage(string(stage.Content)).Build()
	}

	if c.complexDOMThreshold > 0 {
		if tagCount := len(tagOpenRe.FindAllString(raw, -1)); tagCount > c.complexDOMThreshold {
			return false, ingesterrors.Validation(string(ingesterrors.CodeInvalidFormat),
				fmt.Sprintf("dom tag count %d exceeds complexity threshold %d", tagCount, c.complexDOMThreshold)).WithStage(string(stage.Content)).Build()
		}
	}
	if c.maxJSScripts > 0 {
		if scriptCount := len(scriptOpenRe.FindAllString(raw, -1)); scriptCount > c.maxJSScripts {
			return false, ingesterrors.Validation(string(ingesterrors.CodeInvalidFormat),
				fmt.Sprintf("script tag count %d exceeds maximum %d", scriptCount, c.maxJSScripts)).WithStage(string(stage.Content)).Build()
		}
	}

	return true, nil
}

func (c *ContentComponent) Process(ctx context.Context, p *page.Page) error {
	raw := p.RawContent()
	sourceType := classifySource(raw)

	cleaned := raw
	if sourceType == page.SourceHTML {
		cleaned = stripTags(raw)
	}
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))

	p.AttachContent(cleaned, sourceType)
	return nil
}

func classifySource(raw string) page.SourceType {
	switch {
	case strings.HasPrefix(raw, pdfMagic):
		return page.SourcePDF
	case looksLikeHTML.MatchString(raw):
		return page.SourceHTML
	case strings.TrimSpace(raw) != "":
		return page.SourcePlainText
	default:
		return page.SourceUnknown
	}
}

// stripTags removes script/style blocks wholesale, then every remaining tag,
// collapsing the rest to plain text. Shared by MetadataComponent's word-count
// pass and ContentComponent's cleaning pass.
func stripTags(raw string) string {
	noScripts := scriptStyleRe.ReplaceAllString(raw, " ")
	return tagRe.ReplaceAllString(noScripts, " ")
}
