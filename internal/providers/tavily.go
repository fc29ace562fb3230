package providers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// TavilyAdapter wraps https://api.tavily.com/search, grounded on the
// same adapter shape as serper.go: one POST, a flat result list.
type TavilyAdapter struct {
	*baseAdapter
}

func NewTavilyAdapter(apiKey string, timeout time.Duration, maxRetries int, log *logrus.Entry) *TavilyAdapter {
	return &TavilyAdapter{newBaseAdapter("tavily", apiKey, timeout, maxRetries, log)}
}

func (t *TavilyAdapter) Name() string { return "tavily" }

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

func (t *TavilyAdapter) Search(ctx context.Context, query, language string, maxResults int) ([]Hit, Status, error) {
	if t.apiKey == "" {
		return nil, StatusAuthFailed, nil
	}

	reqBody, err := json.Marshal(tavilyRequest{APIKey: t.apiKey, Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, StatusTransportError, err
	}

	body, status, err := t.doJSON(ctx, "POST", "https://api.tavily.com/search", nil, reqBody)
	if status != StatusOK || err != nil {
		return nil, status, err
	}
	if body == nil {
		return nil, StatusEmpty, nil
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, StatusTransportError, err
	}

	hits := make([]Hit, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		hits = append(hits, Hit{Title: r.Title, URL: r.URL, Description: r.Content, Provider: t.Name()})
	}

	hits = filterAndCap(hits)
	if len(hits) == 0 {
		return nil, StatusEmpty, nil
	}
	return hits, StatusOK, nil
}
