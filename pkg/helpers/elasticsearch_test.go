package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func esServer(status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
}

func TestESPing(t *testing.T) {
	up := esServer(http.StatusOK)
	defer up.Close()
	es, err := NewESClient([]string{up.URL}, "", "")
	require.NoError(t, err)
	assert.NoError(t, ESPing(context.Background(), es))

	down := esServer(http.StatusServiceUnavailable)
	defer down.Close()
	es, err = NewESClient([]string{down.URL}, "", "")
	require.NoError(t, err)
	assert.Error(t, ESPing(context.Background(), es))
}

func TestNewESClientRequiresAddress(t *testing.T) {
	_, err := NewESClient(nil, "", "")
	assert.Error(t, err)
}
