// Package dataforseo is a small client for the DataForSEO Labs keyword endpoints used by gap analysis.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"gapscout/internal/core"
	"gapscout/internal/logger"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://api.dataforseo.com"

	intersectionPath   = "/v3/dataforseo_labs/google/domain_intersection/live"
	rankedKeywordsPath = "/v3/dataforseo_labs/google/ranked_keywords/live"

	statusOK = 20000
)

// Config holds DataForSEO credentials and request defaults.
type Config struct {
	Login        string
	Password     string
	BaseURL      string
	LanguageCode string
	Timeout      time.Duration
}

// Client calls DataForSEO Labs endpoints with HTTP basic auth.
type Client struct {
	login        string
	password     string
	baseURL      string
	languageCode string
	client       *http.Client
}

// NewClient creates a DataForSEO client. Login and password are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Login == "" || cfg.Password == "" {
		return nil, fmt.Errorf("dataforseo login and password are required. Set DATAFORSEO_LOGIN and DATAFORSEO_PASSWORD")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}

	return &Client{
		login:        cfg.Login,
		password:     cfg.Password,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		languageCode: cfg.LanguageCode,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// FetchIntersection returns the raw domain-intersection rows for competitor (target1) against primary (target2).
func (c *Client) FetchIntersection(ctx context.Context, competitor, primary string, locationCode, limit int) ([]json.RawMessage, error) {
	task := map[string]any{
		"target1":       competitor,
		"target2":       primary,
		"location_code": locationCode,
		"language_code": c.languageCode,
		"intersections": false,
		"limit":         limit,
		"order_by":      []string{"keyword_data.keyword_info.search_volume,desc"},
	}

	items, err := c.post(ctx, intersectionPath, task)
	if err != nil {
		return nil, err
	}

	rows := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		rows = append(rows, json.RawMessage(item.Raw))
	}

	logger.Info("DataForSEO intersection fetched", "competitor", competitor, "primary", primary, "rows", len(rows))
	return rows, nil
}

// RankedKeywords returns the keywords a domain ranks for, shaped for merging.
func (c *Client) RankedKeywords(ctx context.Context, domain string, locationCode, limit int) ([]core.DomainKeyword, error) {
	task := map[string]any{
		"target":        domain,
		"location_code": locationCode,
		"language_code": c.languageCode,
		"limit":         limit,
		"order_by":      []string{"keyword_data.keyword_info.search_volume,desc"},
	}

	items, err := c.post(ctx, rankedKeywordsPath, task)
	if err != nil {
		return nil, err
	}

	keywords := make([]core.DomainKeyword, 0, len(items))
	for _, item := range items {
		kw, ok := parseRankedKeyword(item)
		if !ok {
			logger.Warn("Skipping ranked keyword row without keyword text", "domain", domain)
			continue
		}
		keywords = append(keywords, kw)
	}

	logger.Info("DataForSEO ranked keywords fetched", "domain", domain, "keywords", len(keywords))
	return keywords, nil
}

func parseRankedKeyword(item gjson.Result) (core.DomainKeyword, bool) {
	keyword := FirstOf(item, "keyword_data.keyword", "keyword").String()
	if keyword == "" {
		return core.DomainKeyword{}, false
	}

	kw := core.DomainKeyword{
		Keyword:             keyword,
		MonthlySearchVolume: int(FirstOf(item, "keyword_data.keyword_info.search_volume", "search_volume").Int()),
		CompetitionIndex:    Difficulty(item),
	}

	if rank := FirstOf(item, "ranked_serp_element.serp_item.rank_group", "ranked_serp_element.serp_item.rank_absolute", "rank_group"); rank.Exists() && rank.Type == gjson.Number {
		kw.Rank = core.IntPtr(int(rank.Int()))
	}
	if url := FirstOf(item, "ranked_serp_element.serp_item.url", "url"); url.String() != "" {
		kw.URL = core.StringPtr(url.String())
	}
	return kw, true
}

// Difficulty reads a 0-100 difficulty from a row: keyword difficulty, then competition index,
// then the 0-1 competition ratio scaled to 100.
func Difficulty(item gjson.Result) float64 {
	if v := FirstOf(item, "keyword_data.keyword_properties.keyword_difficulty", "keyword_properties.keyword_difficulty", "keyword_difficulty"); v.Type == gjson.Number {
		return v.Float()
	}
	if v := FirstOf(item, "keyword_data.keyword_info.competition_index", "competition_index"); v.Type == gjson.Number {
		return v.Float()
	}
	if v := FirstOf(item, "keyword_data.keyword_info.competition", "competition"); v.Type == gjson.Number {
		return v.Float() * 100
	}
	return 0
}

// FirstOf returns the first path that exists in item.
func FirstOf(item gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := item.Get(p); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

// post sends one task and returns the items of its first result.
func (c *Client) post(ctx context.Context, path string, task map[string]any) ([]gjson.Result, error) {
	body, err := json.Marshal([]map[string]any{task})
	if err != nil {
		return nil, fmt.Errorf("failed to encode DataForSEO request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create DataForSEO request: %w", err)
	}
	req.SetBasicAuth(c.login, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: DataForSEO request: %v", core.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading DataForSEO response: %v", core.ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: DataForSEO request failed with status: %d", core.ErrProviderUnavailable, resp.StatusCode)
	}
	if !gjson.ValidBytes(payload) {
		return nil, fmt.Errorf("%w: DataForSEO response is not valid JSON", core.ErrMalformedProviderResponse)
	}

	doc := gjson.ParseBytes(payload)
	if code := doc.Get("status_code").Int(); code != statusOK {
		return nil, fmt.Errorf("%w: DataForSEO error (%d): %s", core.ErrProviderUnavailable, code, doc.Get("status_message").String())
	}

	taskResult := doc.Get("tasks.0")
	if !taskResult.Exists() {
		return nil, fmt.Errorf("%w: DataForSEO response has no tasks", core.ErrMalformedProviderResponse)
	}
	if code := taskResult.Get("status_code").Int(); code != statusOK {
		return nil, fmt.Errorf("%w: DataForSEO task error (%d): %s", core.ErrProviderUnavailable, code, taskResult.Get("status_message").String())
	}

	items := taskResult.Get("result.0.items")
	if !items.Exists() || items.Type == gjson.Null {
		return nil, nil
	}
	if !items.IsArray() {
		return nil, fmt.Errorf("%w: DataForSEO items is not an array", core.ErrMalformedProviderResponse)
	}
	return items.Array(), nil
}
