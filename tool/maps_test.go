package tool

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapsSearchInvoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Chinatown sichuan", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"places":[
			{"display_name":"Chuan Wang","formatted_address":"18 Smith St","area":"Chinatown",
			 "rating":4.4,"user_ratings_total":812,"price_level":"$$","open_now":true,
			 "link":"https://maps.example/chuanwang"},
			{"display_name":"Lao Sichuan","formatted_address":"5 Mosque St","area":"Chinatown",
			 "rating":4.1,"user_ratings_total":233,"price_level":"$$","open_now":false,
			 "link":"https://maps.example/laosichuan"}
		]}`)
	}))
	defer srv.Close()

	m, err := NewMapsSearch("test-key", WithMapsBaseURL(srv.URL), WithMapsMaxResults(5))
	require.NoError(t, err)

	out, err := m.Invoke(context.Background(), map[string]any{"query": "Chinatown sichuan"})
	require.NoError(t, err)

	rows, ok := out.([]map[string]any)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, "Chuan Wang", rows[0]["name"])
	assert.Equal(t, 4.4, rows[0]["rating"])
	assert.Equal(t, 812, rows[0]["reviews_count"])
	assert.Equal(t, true, rows[0]["open_now"])
}

func TestMapsSearchRequiresQuery(t *testing.T) {
	m, err := NewMapsSearch("test-key")
	require.NoError(t, err)

	_, err = m.Invoke(context.Background(), map[string]any{})
	assert.Error(t, err)
}

func TestMapsSearchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m, err := NewMapsSearch("test-key", WithMapsBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = m.Invoke(context.Background(), map[string]any{"query": "x"})
	assert.ErrorContains(t, err, "502")
}

func TestNewMapsSearchRequiresKey(t *testing.T) {
	t.Setenv("GMAP_API_KEY", "")
	_, err := NewMapsSearch("")
	assert.Error(t, err)
}

func TestMapsSearchMaxResultsClamped(t *testing.T) {
	m, err := NewMapsSearch("k", WithMapsMaxResults(99))
	require.NoError(t, err)
	assert.Equal(t, 20, m.MaxResults)

	m, err = NewMapsSearch("k", WithMapsMaxResults(0))
	require.NoError(t, err)
	assert.Equal(t, 1, m.MaxResults)
}
