package providers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// PerplexityAdapter wraps Perplexity's chat-completions endpoint in
// "search" mode: the hits are synthesized from the citations array
// rather than a dedicated search endpoint, the weakest-structured of
// the adapters, which is why the scorer gives it a low (0.50) provider
// trust weight.
type PerplexityAdapter struct {
	*baseAdapter
}

func NewPerplexityAdapter(apiKey string, timeout time.Duration, maxRetries int, log *logrus.Entry) *PerplexityAdapter {
	return &PerplexityAdapter{newBaseAdapter("perplexity", apiKey, timeout, maxRetries, log)}
}

func (p *PerplexityAdapter) Name() string { return "perplexity" }

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityRequest struct {
	Model    string              `json:"model"`
	Messages []perplexityMessage `json:"messages"`
}

type perplexityResponse struct {
	Citations []string `json:"citations"`
	Choices   []struct {
		Message perplexityMessage `json:"message"`
	} `json:"choices"`
}

func (p *PerplexityAdapter) Search(ctx context.Context, query, language string, maxResults int) ([]Hit, Status, error) {
	if p.apiKey == "" {
		return nil, StatusAuthFailed, nil
	}

	reqBody, err := json.Marshal(perplexityRequest{
		Model: "sonar",
		Messages: []perplexityMessage{
			{Role: "user", Content: query},
		},
	})
	if err != nil {
		return nil, StatusTransportError, err
	}

	body, status, err := p.doJSON(ctx, "POST", "https://api.perplexity.ai/chat/completions", map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	}, reqBody)
	if status != StatusOK || err != nil {
		return nil, status, err
	}
	if body == nil {
		return nil, StatusEmpty, nil
	}

	var parsed perplexityResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, StatusTransportError, err
	}

	snippet := ""
	if len(parsed.Choices) > 0 {
		snippet = truncate(parsed.Choices[0].Message.Content, descriptionCap)
	}

	hits := make([]Hit, 0, len(parsed.Citations))
	for i, u := range parsed.Citations {
		if i >= maxResults {
			break
		}
		hits = append(hits, Hit{Title: u, URL: u, Description: snippet, Provider: p.Name()})
	}

	hits = filterAndCap(hits)
	if len(hits) == 0 {
		return nil, StatusEmpty, nil
	}
	return hits, StatusOK, nil
}
