package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuizDefinition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/chapter-1-quiz", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"item": map[string]interface{}{
				"system": map[string]interface{}{"id": "abc", "name": "Chapter 1 Quiz"},
				"elements": map[string]interface{}{
					"questions": map[string]interface{}{
						"value": []map[string]interface{}{
							{"id": "q1", "correctAnswer": "b"},
							{"id": "q2", "correctAnswer": "d"},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewContentClient(srv.URL, "key")
	def, err := client.GetQuizDefinition("chapter-1-quiz")
	require.NoError(t, err)
	assert.Equal(t, "abc", def.Id)
	require.Len(t, def.Questions, 2)
	assert.Equal(t, "d", def.Questions[1].CorrectAnswer)
}

func TestGetQuizDefinitionNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/items/gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		// Present but with an empty system id also counts as missing
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"item": map[string]interface{}{"system": map[string]interface{}{"id": ""}},
		})
	}))
	defer srv.Close()

	client := NewContentClient(srv.URL, "key")

	_, err := client.GetQuizDefinition("gone")
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = client.GetQuizDefinition("hollow")
	assert.ErrorIs(t, err, ErrItemNotFound)
}
