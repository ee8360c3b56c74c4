package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRendition(t *testing.T) {
	r, ok := parseRendition("https://player.vimeo.com/play/123?s=abc123&oauth2_token_id=tok456")
	require.True(t, ok)
	assert.Equal(t, "abc123", r.Signature)
	assert.Equal(t, "tok456", r.Token)

	// Long-form signature parameter
	r, ok = parseRendition("https://player.vimeo.com/play/123?signature=def&oauth2_token_i=tok")
	require.True(t, ok)
	assert.Equal(t, "def", r.Signature)
	assert.Equal(t, "tok", r.Token)

	_, ok = parseRendition("https://player.vimeo.com/play/123?quality=720p")
	assert.False(t, ok)
}

func TestGetResolutionsFiltersAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"files": []map[string]interface{}{
				{"height": 360, "link": "https://cdn/p?s=sig360&oauth2_token_id=t1"},
				{"height": 540, "link": "https://cdn/p?s=sig540&oauth2_token_id=t2"},
				{"height": 720, "link": "https://cdn/p?s=sig720&oauth2_token_id=t3"},
				{"height": 1024, "link": "https://cdn/p?s=sig1024&oauth2_token_id=t4"},
			},
		})
	}))
	defer srv.Close()

	client := NewVimeoClient("tok")
	client.client.SetBaseURL(srv.URL)

	res, err := client.GetResolutions("12345")
	require.NoError(t, err)

	// 540p is not a served height
	assert.Len(t, res, 3)
	assert.Equal(t, "sig360", res["360p"].Signature)
	assert.Equal(t, "t3", res["720p"].Token)
	assert.Contains(t, res, "1024p")

	// Second lookup comes from cache
	_, err = client.GetResolutions("12345")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestGetResolutionsBatchSkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/videos/bad" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"files": []map[string]interface{}{
				{"height": 720, "link": "https://cdn/p?s=sig&oauth2_token_id=t"},
			},
		})
	}))
	defer srv.Close()

	client := NewVimeoClient("tok")
	client.client.SetBaseURL(srv.URL)

	out := client.GetResolutionsBatch([]string{"good", "bad"})
	assert.Contains(t, out, "good")
	assert.NotContains(t, out, "bad")
}
