package providers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// ExaAdapter wraps https://api.exa.ai/search, an API-key-header
// provider in the same family as serper/tavily.
type ExaAdapter struct {
	*baseAdapter
}

func NewExaAdapter(apiKey string, timeout time.Duration, maxRetries int, log *logrus.Entry) *ExaAdapter {
	return &ExaAdapter{newBaseAdapter("exa", apiKey, timeout, maxRetries, log)}
}

func (e *ExaAdapter) Name() string { return "exa" }

type exaRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults"`
}

type exaResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

type exaResponse struct {
	Results []exaResult `json:"results"`
}

func (e *ExaAdapter) Search(ctx context.Context, query, language string, maxResults int) ([]Hit, Status, error) {
	if e.apiKey == "" {
		return nil, StatusAuthFailed, nil
	}

	reqBody, err := json.Marshal(exaRequest{Query: query, NumResults: maxResults})
	if err != nil {
		return nil, StatusTransportError, err
	}

	body, status, err := e.doJSON(ctx, "POST", "https://api.exa.ai/search", map[string]string{
		"x-api-key": e.apiKey,
	}, reqBody)
	if status != StatusOK || err != nil {
		return nil, status, err
	}
	if body == nil {
		return nil, StatusEmpty, nil
	}

	var parsed exaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, StatusTransportError, err
	}

	hits := make([]Hit, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		hits = append(hits, Hit{Title: r.Title, URL: r.URL, Description: r.Text, Provider: e.Name()})
	}

	hits = filterAndCap(hits)
	if len(hits) == 0 {
		return nil, StatusEmpty, nil
	}
	return hits, StatusOK, nil
}
