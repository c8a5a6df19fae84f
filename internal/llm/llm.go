package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"gapscout/internal/core"
	"gapscout/internal/logger"
)

const (
	// DefaultModel is the Gemini model used for gap estimation.
	DefaultModel = "gemini-1.5-flash"
	// DefaultMaxTokens bounds the estimate response.
	DefaultMaxTokens = int32(8192)
	// DefaultTemperature keeps estimates close to the supplied data.
	DefaultTemperature = float32(0.2)

	// EstimateGapsPromptTemplate asks for keyword gaps as a JSON array matching the response schema.
	EstimateGapsPromptTemplate = `You are an SEO analyst. The primary domain is %s. Competitor domains: %s.

Using only the keyword data below, estimate up to %d keyword gaps: keywords where a competitor ranks in the top 30 and the primary domain does not.
For each gap return keyword, competitor (one of the competitor domains), competitorRank (1-30), volume and difficulty (0-100).

Keyword data (keyword | monthly volume | difficulty | primary rank | competitor ranks):
%s`
)

// Config holds the Gemini settings the client needs.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
	Timeout     time.Duration
}

// EstimateRequest is the input to a gap estimate.
type EstimateRequest struct {
	PrimaryDomain     string
	CompetitorDomains []string
	Sample            []core.KeywordRecord
	TargetCount       int
}

// Client wraps a Gemini generative model configured for structured gap estimates.
type Client struct {
	modelName   string
	maxTokens   int32
	temperature float32
	timeout     time.Duration
	gClient     *genai.Client
}

// NewClient creates a Gemini client. The API key is required.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}

	gClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName:   cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		gClient:     gClient,
	}, nil
}

// EstimateGaps sends a bounded keyword sample to the model and returns the raw JSON array it produced.
// The response is untrusted and must be validated by the caller.
func (c *Client) EstimateGaps(ctx context.Context, req EstimateRequest) ([]byte, error) {
	if len(req.Sample) == 0 {
		return nil, fmt.Errorf("%w: empty keyword sample", core.ErrNoKeywordData)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := c.gClient.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	model.SetMaxOutputTokens(c.maxTokens)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = GapSchema()

	prompt := BuildEstimatePrompt(req)
	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate content: %v", core.ErrProviderUnavailable, err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response from model", core.ErrMalformedProviderResponse)
	}

	logger.Debug("Gemini gap estimate completed", "model", c.modelName, "sample", len(req.Sample), "duration_ms", time.Since(start).Milliseconds())
	return []byte(text), nil
}

// GapSchema describes the JSON array the model must return.
func GapSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"keyword":        {Type: genai.TypeString},
				"competitor":     {Type: genai.TypeString},
				"competitorRank": {Type: genai.TypeInteger},
				"volume":         {Type: genai.TypeInteger},
				"difficulty":     {Type: genai.TypeNumber},
			},
			Required: []string{"keyword", "competitor", "competitorRank"},
		},
	}
}

// BuildEstimatePrompt renders the sample as compact pipe-separated rows.
func BuildEstimatePrompt(req EstimateRequest) string {
	var rows strings.Builder
	for _, rec := range req.Sample {
		fmt.Fprintf(&rows, "%s | %d | %.0f | %s | %s\n",
			rec.Keyword, rec.MonthlySearchVolume, rec.CompetitionIndex, formatRank(rec.PrimaryRank), formatCompetitorRanks(rec.CompetitorRanks))
	}
	return fmt.Sprintf(EstimateGapsPromptTemplate,
		req.PrimaryDomain, strings.Join(req.CompetitorDomains, ", "), req.TargetCount, rows.String())
}

func formatRank(rank *int) string {
	if rank == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *rank)
}

func formatCompetitorRanks(ranks map[string]*int) string {
	if len(ranks) == 0 {
		return "-"
	}
	domains := make([]string, 0, len(ranks))
	for d := range ranks {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	parts := make([]string, 0, len(domains))
	for _, d := range domains {
		parts = append(parts, d+"="+formatRank(ranks[d]))
	}
	return strings.Join(parts, " ")
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

// ModelName returns the model name used by this client
func (c *Client) ModelName() string {
	return c.modelName
}

// Close cleans up resources used by the client
func (c *Client) Close() {
	if c.gClient != nil {
		if err := c.gClient.Close(); err != nil {
			logger.Warn("Failed to close Gemini client", "error", err.Error())
		}
	}
}

// EstimatedGap is one element of a validated model response.
type EstimatedGap struct {
	Keyword        string   `json:"keyword"`
	Competitor     string   `json:"competitor"`
	CompetitorRank *int     `json:"competitorRank"`
	Volume         *int     `json:"volume"`
	Difficulty     *float64 `json:"difficulty"`
}

// ParseEstimate validates a model response: it must be a non-empty JSON array whose every element
// carries keyword and competitor.
func ParseEstimate(raw []byte) ([]EstimatedGap, error) {
	trimmed := strings.TrimSpace(string(raw))
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	if !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("%w: expected a JSON array", core.ErrMalformedProviderResponse)
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedProviderResponse, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty gap array", core.ErrMalformedProviderResponse)
	}

	out := make([]EstimatedGap, 0, len(items))
	for i, item := range items {
		for _, field := range []string{"keyword", "competitor"} {
			if v, ok := item[field]; !ok || string(v) == "null" || string(v) == `""` {
				return nil, fmt.Errorf("%w: element %d missing %s", core.ErrMalformedProviderResponse, i, field)
			}
		}
		encoded, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", core.ErrMalformedProviderResponse, i, err)
		}
		var g EstimatedGap
		if err := json.Unmarshal(encoded, &g); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", core.ErrMalformedProviderResponse, i, err)
		}
		out = append(out, g)
	}
	return out, nil
}
