package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndParseDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "MarketBluff", r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(`{"symbol":"AAPL"}`))
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(time.Second), WithHeader("User-Agent", "MarketBluff"))
	var out struct {
		Symbol string `json:"symbol"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL,
		Headers:     map[string]string{"X-Extra": "yes"},
		QueryParams: map[string][]string{"interval": {"1d"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", out.Symbol)
}

func TestSendAndParseRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<table></table>"))
	}))
	defer srv.Close()

	var body []byte
	require.NoError(t, NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &body))
	assert.Equal(t, "<table></table>", string(body))
}

func TestSendAndParseStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Contains(t, se.Body, "gone")
}
