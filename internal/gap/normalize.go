package gap

import (
	"fmt"
	"strings"
	"unicode"

	"gapscout/internal/core"
)

var stripPrefixes = []string{"https://", "http://", "www."}

// Normalize strips leading http:// or https:// and www. so domain identities compare consistently.
// The remainder, including any path, is returned unchanged. www. is only stripped while another dot
// follows it, so "www.com" stays intact. Prefixes are stripped until none remain, which makes
// Normalize idempotent.
func Normalize(urlOrDomain string) string {
	s := strings.TrimSpace(urlOrDomain)
	for {
		stripped := false
		for _, prefix := range stripPrefixes {
			if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
				continue
			}
			rest := strings.TrimSpace(s[len(prefix):])
			if prefix == "www." && !strings.Contains(rest, ".") {
				continue
			}
			s = rest
			stripped = true
		}
		if !stripped {
			return s
		}
	}
}

// NormalizeRecords returns copies of records whose competitor maps are keyed by normalized domain.
// The input maps are not modified. When two keys collapse to the same domain the better position wins.
func NormalizeRecords(records []core.KeywordRecord) []core.KeywordRecord {
	out := make([]core.KeywordRecord, len(records))
	for i, rec := range records {
		ranks := make(map[string]*int, len(rec.CompetitorRanks))
		for domain, rank := range rec.CompetitorRanks {
			key := Normalize(domain)
			if prev, ok := ranks[key]; ok && !betterRank(rank, prev) {
				continue
			}
			ranks[key] = rank
		}
		urls := make(map[string]*string, len(rec.CompetitorURLs))
		for domain, url := range rec.CompetitorURLs {
			key := Normalize(domain)
			if prev, ok := urls[key]; ok && prev != nil {
				continue
			}
			urls[key] = url
		}
		rec.CompetitorRanks = ranks
		rec.CompetitorURLs = urls
		out[i] = rec
	}
	return out
}

func betterRank(candidate, current *int) bool {
	switch {
	case candidate == nil || *candidate < 1:
		return false
	case current == nil || *current < 1:
		return true
	default:
		return *candidate < *current
	}
}

// ValidateDomain normalizes a domain and rejects values that cannot serve as a join key.
func ValidateDomain(raw string) (string, error) {
	domain := Normalize(raw)
	if domain == "" {
		return "", fmt.Errorf("%w: empty domain %q", core.ErrInvalidDomainInput, raw)
	}
	if strings.IndexFunc(domain, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: domain %q contains whitespace", core.ErrInvalidDomainInput, raw)
	}
	return domain, nil
}

// ValidateDomains normalizes every competitor domain, dropping duplicates and the primary domain itself.
func ValidateDomains(primary string, competitors []string) ([]string, error) {
	seen := map[string]bool{primary: true}
	out := make([]string, 0, len(competitors))
	for _, raw := range competitors {
		domain, err := ValidateDomain(raw)
		if err != nil {
			return nil, err
		}
		if seen[domain] {
			continue
		}
		seen[domain] = true
		out = append(out, domain)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one competitor domain is required", core.ErrInvalidDomainInput)
	}
	return out, nil
}

// domainLabel returns the first host label of a normalized domain, lowercased ("example" for "example.com/blog").
func domainLabel(domain string) string {
	host := domain
	if i := strings.IndexAny(host, "/?#:"); i >= 0 {
		host = host[:i]
	}
	if i := strings.Index(host, "."); i >= 0 {
		host = host[:i]
	}
	return strings.ToLower(host)
}
