package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// JinaAdapter wraps Jina's s.jina.ai search-reader endpoint: a GET
// request with the query embedded in the path, Bearer auth.
type JinaAdapter struct {
	*baseAdapter
}

func NewJinaAdapter(apiKey string, timeout time.Duration, maxRetries int, log *logrus.Entry) *JinaAdapter {
	return &JinaAdapter{newBaseAdapter("jina", apiKey, timeout, maxRetries, log)}
}

func (j *JinaAdapter) Name() string { return "jina" }

type jinaResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type jinaResponse struct {
	Data []jinaResult `json:"data"`
}

func (j *JinaAdapter) Search(ctx context.Context, query, language string, maxResults int) ([]Hit, Status, error) {
	if j.apiKey == "" {
		return nil, StatusAuthFailed, nil
	}

	endpoint := fmt.Sprintf("https://s.jina.ai/%s", url.QueryEscape(query))
	body, status, err := j.doJSON(ctx, "GET", endpoint, map[string]string{
		"Authorization": "Bearer " + j.apiKey,
		"Accept":        "application/json",
	}, nil)
	if status != StatusOK || err != nil {
		return nil, status, err
	}
	if body == nil {
		return nil, StatusEmpty, nil
	}

	var parsed jinaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, StatusTransportError, err
	}

	hits := make([]Hit, 0, len(parsed.Data))
	for i, r := range parsed.Data {
		if i >= maxResults {
			break
		}
		hits = append(hits, Hit{Title: r.Title, URL: r.URL, Description: r.Content, Provider: j.Name()})
	}

	hits = filterAndCap(hits)
	if len(hits) == 0 {
		return nil, StatusEmpty, nil
	}
	return hits, StatusOK, nil
}
