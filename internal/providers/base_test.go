package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	return logrus.New().WithField("test", true)
}

func TestDoJSONTripsBreakerOnQuotaExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	b := newBaseAdapter("test-provider", "key", time.Second, 0, testLogger())
	_, status, err := b.doJSON(context.Background(), "GET", server.URL, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, StatusQuotaExhausted, status)
	assert.True(t, b.IsDegraded(), "breaker should be open after a quota-exhausted response")
}

func TestDoJSONDoesNotTripBreakerOnTransportError(t *testing.T) {
	b := newBaseAdapter("test-provider", "key", 50*time.Millisecond, 0, testLogger())
	_, status, err := b.doJSON(context.Background(), "GET", "http://127.0.0.1:0/unreachable", nil, nil)

	require.Error(t, err)
	assert.Equal(t, StatusTransportError, status)
	assert.False(t, b.IsDegraded(), "transient transport errors must not trip the degraded latch")
}

func TestDoJSONSucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	b := newBaseAdapter("test-provider", "key", time.Second, 0, testLogger())
	body, status, err := b.doJSON(context.Background(), "GET", server.URL, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.Contains(t, string(body), "ok")
	assert.False(t, b.IsDegraded())
}

func TestFilterAndCapDropsInvalidURLsAndTruncatesDescriptions(t *testing.T) {
	long := make([]byte, descriptionCap+50)
	for i := range long {
		long[i] = 'x'
	}

	hits := []Hit{
		{Title: "valid", URL: "https://news.example.com.br/a", Description: string(long)},
		{Title: "invalid", URL: "not-a-url", Description: "short"},
		{Title: "search engine", URL: "https://www.google.com/search?q=x", Description: "short"},
	}

	out := filterAndCap(hits)
	require.Len(t, out, 1)
	assert.Equal(t, "valid", out[0].Title)
	assert.LessOrEqual(t, len([]rune(out[0].Description)), descriptionCap)
}

func TestCountryCodeDefaultsToUS(t *testing.T) {
	assert.Equal(t, "br", CountryCode("pt"))
	assert.Equal(t, "us", CountryCode("xx"))
}
