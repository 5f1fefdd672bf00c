package search_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigialabs/vigia/internal/search"
)

func TestSearch_Params(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "clave", q.Get("key"))
		assert.Equal(t, "motor", q.Get("cx"))
		assert.Equal(t, "objetivo noticias denuncias colombia", q.Get("q"))
		assert.Equal(t, "5", q.Get("num"))
		assert.Equal(t, "co", q.Get("gl"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"title": "Nota uno", "link": "https://prensa.example.com/1", "snippet": "..."},
				{"title": "Nota dos", "link": "https://prensa.example.com/2", "snippet": "..."},
			},
		})
	}))
	defer srv.Close()

	client := search.New(search.Config{
		Endpoint: srv.URL,
		APIKey:   "clave",
		EngineID: "motor",
	})

	results, err := client.Search(context.Background(), search.TargetQuery("objetivo"))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://prensa.example.com/1", results[0].Link)
}

func TestSearch_EmptyResultsNotError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	client := search.New(search.Config{Endpoint: srv.URL, APIKey: "k", EngineID: "cx"})
	results, err := client.Search(context.Background(), "sin resultados")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_MissingCredentials(t *testing.T) {
	t.Parallel()

	client := search.New(search.Config{})
	_, err := client.Search(context.Background(), "algo")
	assert.ErrorIs(t, err, search.ErrMissingCredentials)
}

func TestSearch_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "quota exceeded"},
		})
	}))
	defer srv.Close()

	client := search.New(search.Config{Endpoint: srv.URL, APIKey: "k", EngineID: "cx"})
	_, err := client.Search(context.Background(), "algo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
