package pipeline

import (
	"net/url"
	"strings"
)

// normalizedURL is the outcome of normalizing a submitted URL (spec.md §4.6
// step 1): the full URL preserved as given, plus the registrable domain
// derived from its host.
type normalizedURL struct {
	URL    string
	Domain string
}

// normalizeURL parses url, extracts its registrable domain (the last two
// dot-separated labels of the host, or the whole host if it has fewer), and
// preserves the full URL unchanged. File URLs have no host, so they map to
// domain "localhost" per spec.md §4.6 step 1.
//
// This is a one-off parsing rule with no well-known-domain-suffix library in
// play (the corpus carries no public-suffix-list dependency); net/url is the
// only piece of it that benefits from a library at all.
func normalizeURL(raw string) (normalizedURL, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil {
		return normalizedURL{}, err
	}

	if parsed.Scheme == "file" || parsed.Host == "" {
		return normalizedURL{URL: raw, Domain: "localhost"}, nil
	}

	host := parsed.Hostname()
	labels := strings.Split(host, ".")
	domain := host
	if len(labels) >= 2 {
		domain = strings.Join(labels[len(labels)-2:], ".")
	}

	return normalizedURL{URL: raw, Domain: domain}, nil
}
