// Package translate implements the Translation & Language Service (C2):
// an LLM-gateway-backed translate/detect_and_translate pair with
// model-tier fallback and validation against untranslated passthrough.
// Grounded on translation-service/internal/clients/orchestrator.go's
// ordered-fallback-until-success loop, adapted from "N independent
// providers" to "N models against one gateway".
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tesseract-hub/research-orchestrator/internal/langdetect"
)

type Service struct {
	gatewayURL    string
	apiKey        string
	freeModels    []string
	premiumModels []string
	validationMin int
	httpClient    *http.Client
	log           *logrus.Entry
}

func NewService(gatewayURL, apiKey string, freeModels, premiumModels []string, validationMin int, timeout time.Duration, log *logrus.Entry) *Service {
	return &Service{
		gatewayURL:    gatewayURL,
		apiKey:        apiKey,
		freeModels:    freeModels,
		premiumModels: premiumModels,
		validationMin: validationMin,
		httpClient:    &http.Client{Timeout: timeout},
		log:           log.WithField("component", "translate"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// callModel issues one chat-completion call against a single model
// identifier and returns the trimmed text, or "" if the model produced
// nothing usable.
func (s *Service) callModel(ctx context.Context, model, prompt string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.gatewayURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm gateway: model %s returned status %d", model, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// tryTiers walks the free models in order, falling back to the premium
// tier only when deep requests it, returning the first non-empty
// output - the model-fallback contract described in spec §4.2/§6.
func (s *Service) tryTiers(ctx context.Context, prompt string, deep bool) (string, error) {
	models := s.freeModels
	if deep {
		models = append(append([]string{}, s.freeModels...), s.premiumModels...)
	}

	var lastErr error
	for _, model := range models {
		out, err := s.callModel(ctx, model, prompt)
		if err != nil {
			lastErr = err
			s.log.WithError(err).WithField("model", model).Warn("model call failed, trying next tier")
			continue
		}
		if out != "" {
			return out, nil
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("all models exhausted: %w", lastErr)
	}
	return "", nil
}

// Translate returns the translated text, or "" if every model in the
// tier failed or validation rejected the output as untranslated
// passthrough.
func (s *Service) Translate(ctx context.Context, text, sourceLang, targetLang string) string {
	return s.translate(ctx, text, sourceLang, targetLang, false)
}

// TranslateDeep is the premium-tier variant, used for deep analysis
// callers (e.g. best-practice extraction, out of core scope but named
// in §6's model-tier contract).
func (s *Service) TranslateDeep(ctx context.Context, text, sourceLang, targetLang string) string {
	return s.translate(ctx, text, sourceLang, targetLang, true)
}

func (s *Service) translate(ctx context.Context, text, sourceLang, targetLang string, deep bool) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Return only the translated text, nothing else.\n\n%s",
		sourceLang, targetLang, text,
	)
	out, err := s.tryTiers(ctx, prompt, deep)
	if err != nil {
		s.log.WithError(err).Warn("translation failed")
		return ""
	}
	if out == "" {
		return ""
	}
	if !s.validates(out, sourceLang) {
		s.log.WithField("source_lang", sourceLang).Warn("translation rejected: untranslated passthrough detected")
		return ""
	}
	return out
}

// DetectAndTranslate detects text's source language with the keyword
// detector (langdetect.Detect), falling back to assumedSource when the
// result is Unknown, then translates into target and returns that
// detected language. The LLM is not asked to identify the language.
func (s *Service) DetectAndTranslate(ctx context.Context, text, assumedSource, target string) (translated, detectedSource string) {
	detected, _ := langdetect.Detect(text)
	if detected == langdetect.Unknown {
		detected = assumedSource
	}
	return s.translate(ctx, text, detected, target, false), detected
}

// validates rejects a translation that is detected as still being in
// the source language - an untranslated passthrough. Below
// ValidationMin runes, detection is unreliable, so validation is
// skipped and the output is trusted (§9 Open Question 4).
func (s *Service) validates(translated, sourceLang string) bool {
	if len([]rune(translated)) < s.validationMin {
		return true
	}
	detected, confidence := langdetect.Detect(translated)
	if detected == langdetect.Unknown || confidence < langdetect.ValidationThreshold {
		return true
	}
	return detected != sourceLang
}
