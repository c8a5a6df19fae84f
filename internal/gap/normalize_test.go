package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapscout/internal/core"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"https://example.com", "example.com"},
		{"http://www.example.com", "example.com"},
		{"HTTPS://WWW.Example.com/blog", "Example.com/blog"},
		{"  www.rival.com  ", "rival.com"},
		{"https://https://www.www.x.io", "x.io"},
		{"", ""},
		{"www.", "www."},
		{"www.com", "www.com"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://www.https://example.com",
		"www.http://a.com",
		" http:// www.b.com",
		"wwww.c.com",
		"HtTp://WwW.d.com/path?q=1",
		"not a domain",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestValidateDomain(t *testing.T) {
	domain, err := ValidateDomain("https://www.example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", domain)

	_, err = ValidateDomain("  https://  ")
	assert.ErrorIs(t, err, core.ErrInvalidDomainInput)

	_, err = ValidateDomain("exa mple.com")
	assert.ErrorIs(t, err, core.ErrInvalidDomainInput)
}

func TestValidateDomainsDropsDuplicatesAndPrimary(t *testing.T) {
	got, err := ValidateDomains("example.com", []string{"https://a.com", "www.a.com", "example.com", "b.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com"}, got)

	_, err = ValidateDomains("example.com", []string{"www.example.com"})
	assert.ErrorIs(t, err, core.ErrInvalidDomainInput)
}

func TestDomainLabel(t *testing.T) {
	assert.Equal(t, "example", domainLabel("Example.com/blog"))
	assert.Equal(t, "localhost", domainLabel("localhost:8080"))
	assert.Equal(t, "", domainLabel(""))
}

func TestNormalizeKeepsBareWWWDomain(t *testing.T) {
	assert.Equal(t, "www.com", Normalize("www.com"))
	assert.Equal(t, "www.com", Normalize("https://www.com"))
	assert.Equal(t, "www.com", Normalize(Normalize("http://WWW.com")))
	assert.Equal(t, "example.com", Normalize("www.www.example.com"))
}

func TestNormalizeRecords(t *testing.T) {
	url := "https://rival.com/pricing"
	in := []core.KeywordRecord{{
		Keyword: "widget pricing",
		CompetitorRanks: map[string]*int{
			"https://www.rival.com": core.IntPtr(9),
			"rival.com":             core.IntPtr(4),
			"http://b.com":          nil,
		},
		CompetitorURLs: map[string]*string{"www.rival.com": &url},
	}}

	out := NormalizeRecords(in)
	require.Len(t, out, 1)
	assert.Equal(t, 4, *out[0].CompetitorRanks["rival.com"], "better position wins on collision")
	assert.Contains(t, out[0].CompetitorRanks, "b.com")
	assert.Equal(t, &url, out[0].CompetitorURLs["rival.com"])
	assert.Len(t, in[0].CompetitorRanks, 3, "input is not modified")
}
