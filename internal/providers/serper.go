package providers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// SerperAdapter wraps https://google.serper.dev/search, grounded on
// app/integracao/serper_api.py: POST with X-API-KEY, {q,num,gl,hl}
// payload, knowledgeGraph + organic results both considered hits.
type SerperAdapter struct {
	*baseAdapter
}

func NewSerperAdapter(apiKey string, timeout time.Duration, maxRetries int, log *logrus.Entry) *SerperAdapter {
	return &SerperAdapter{newBaseAdapter("serper", apiKey, timeout, maxRetries, log)}
}

func (s *SerperAdapter) Name() string { return "serper" }

type serperRequest struct {
	Q  string `json:"q"`
	Num int   `json:"num"`
	GL string `json:"gl"`
	HL string `json:"hl"`
}

type serperKnowledgeGraph struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

type serperOrganic struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Snippet string `json:"snippet"`
	Date  string `json:"date"`
}

type serperResponse struct {
	KnowledgeGraph *serperKnowledgeGraph `json:"knowledgeGraph"`
	Organic        []serperOrganic       `json:"organic"`
}

func (s *SerperAdapter) Search(ctx context.Context, query, language string, maxResults int) ([]Hit, Status, error) {
	if s.apiKey == "" {
		return nil, StatusAuthFailed, nil
	}

	reqBody, err := json.Marshal(serperRequest{
		Q:   query,
		Num: maxResults,
		GL:  CountryCode(language),
		HL:  language,
	})
	if err != nil {
		return nil, StatusTransportError, err
	}

	body, status, err := s.doJSON(ctx, "POST", "https://google.serper.dev/search", map[string]string{
		"X-API-KEY": s.apiKey,
	}, reqBody)
	if status != StatusOK || err != nil {
		return nil, status, err
	}
	if body == nil {
		return nil, StatusEmpty, nil
	}

	var parsed serperResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, StatusTransportError, err
	}

	var hits []Hit
	if parsed.KnowledgeGraph != nil && parsed.KnowledgeGraph.Website != "" {
		hits = append(hits, Hit{
			Title:       parsed.KnowledgeGraph.Title,
			URL:         parsed.KnowledgeGraph.Website,
			Description: parsed.KnowledgeGraph.Description,
			Provider:    s.Name(),
		})
	}
	for _, o := range parsed.Organic {
		var published *time.Time
		if o.Date != "" {
			if t, err := time.Parse("2006-01-02", o.Date); err == nil {
				published = &t
			}
		}
		hits = append(hits, Hit{
			Title:       o.Title,
			URL:         o.Link,
			Description: o.Snippet,
			PublishedAt: published,
			Provider:    s.Name(),
		})
	}

	hits = filterAndCap(hits)
	if len(hits) == 0 {
		return nil, StatusEmpty, nil
	}
	return hits, StatusOK, nil
}
