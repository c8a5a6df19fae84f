package dataforseo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"gapscout/internal/core"
)

const rankedResponse = `{
  "status_code": 20000,
  "status_message": "Ok.",
  "tasks": [{
    "status_code": 20000,
    "status_message": "Ok.",
    "result": [{
      "items": [
        {
          "keyword_data": {
            "keyword": "widget pricing",
            "keyword_info": {"search_volume": 1200, "competition": 0.31},
            "keyword_properties": {"keyword_difficulty": 25}
          },
          "ranked_serp_element": {"serp_item": {"rank_group": 3, "url": "https://rival.com/pricing"}}
        },
        {
          "keyword_data": {"keyword": "", "keyword_info": {"search_volume": 10}}
        },
        {
          "keyword_data": {"keyword": "widget history", "keyword_info": {"search_volume": 700, "competition": 0.15}},
          "ranked_serp_element": {"serp_item": {"rank_group": null}}
        }
      ]
    }]
  }]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{Login: "user", Password: "secret", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{Login: "user"})
	assert.Error(t, err)
}

func TestRankedKeywords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, rankedKeywordsPath, r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "secret", pass)

		body, _ := io.ReadAll(r.Body)
		var tasks []map[string]any
		if assert.NoError(t, json.Unmarshal(body, &tasks)) && assert.Len(t, tasks, 1) {
			assert.Equal(t, "rival.com", tasks[0]["target"])
			assert.Equal(t, float64(2840), tasks[0]["location_code"])
		}

		_, _ = w.Write([]byte(rankedResponse))
	})

	keywords, err := c.RankedKeywords(context.Background(), "rival.com", 2840, 100)
	require.NoError(t, err)
	require.Len(t, keywords, 2)

	assert.Equal(t, "widget pricing", keywords[0].Keyword)
	assert.Equal(t, 1200, keywords[0].MonthlySearchVolume)
	assert.Equal(t, 25.0, keywords[0].CompetitionIndex)
	require.NotNil(t, keywords[0].Rank)
	assert.Equal(t, 3, *keywords[0].Rank)
	assert.Equal(t, "https://rival.com/pricing", *keywords[0].URL)

	assert.Equal(t, "widget history", keywords[1].Keyword)
	assert.InDelta(t, 15.0, keywords[1].CompetitionIndex, 1e-9)
	assert.Nil(t, keywords[1].Rank)
}

func TestFetchIntersection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, intersectionPath, r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "rival.com", gjson.GetBytes(body, "0.target1").String())
		assert.Equal(t, "example.com", gjson.GetBytes(body, "0.target2").String())
		_, _ = w.Write([]byte(`{"status_code":20000,"tasks":[{"status_code":20000,"result":[{"items":[{"keyword":"a"},{"keyword":"b"}]}]}]}`))
	})

	rows, err := c.FetchIntersection(context.Background(), "rival.com", "example.com", 2840, 50)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.JSONEq(t, `{"keyword":"a"}`, string(rows[0]))
}

func TestFetchIntersectionEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status_code":20000,"tasks":[{"status_code":20000,"result":[{"items":null}]}]}`))
	})
	rows, err := c.FetchIntersection(context.Background(), "rival.com", "example.com", 2840, 50)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestErrorsAreClassified(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"http error", http.StatusUnauthorized, `{}`, core.ErrProviderUnavailable},
		{"api error", http.StatusOK, `{"status_code":40100,"status_message":"Not authorized"}`, core.ErrProviderUnavailable},
		{"task error", http.StatusOK, `{"status_code":20000,"tasks":[{"status_code":40501,"status_message":"Invalid field"}]}`, core.ErrProviderUnavailable},
		{"no tasks", http.StatusOK, `{"status_code":20000}`, core.ErrMalformedProviderResponse},
		{"not json", http.StatusOK, `<html>`, core.ErrMalformedProviderResponse},
		{"items not array", http.StatusOK, `{"status_code":20000,"tasks":[{"status_code":20000,"result":[{"items":{}}]}]}`, core.ErrMalformedProviderResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.FetchIntersection(context.Background(), "rival.com", "example.com", 2840, 10)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDifficulty(t *testing.T) {
	assert.Equal(t, 40.0, Difficulty(gjson.Parse(`{"keyword_properties":{"keyword_difficulty":40}}`)))
	assert.Equal(t, 33.0, Difficulty(gjson.Parse(`{"competition_index":33}`)))
	assert.InDelta(t, 42.0, Difficulty(gjson.Parse(`{"competition":0.42}`)), 1e-9)
	assert.Equal(t, 0.0, Difficulty(gjson.Parse(`{}`)))
}
