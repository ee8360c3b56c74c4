package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCourseList(t *testing.T) {
	assert.Equal(t, []string{"hist101", "phil201"}, SplitCourseList("hist101;phil201"))
	assert.Empty(t, SplitCourseList(";"))
	assert.Empty(t, SplitCourseList(""))
	assert.Equal(t, []string{"hist101"}, SplitCourseList(";hist101; ;"))
}

func TestJoinCourseListSentinel(t *testing.T) {
	assert.Equal(t, ";", JoinCourseList(nil))
	assert.Equal(t, ";", JoinCourseList([]string{}))
	assert.Equal(t, "hist101;phil201", JoinCourseList([]string{"hist101", "phil201"}))
}

// fakeHubspot serves one contact and records property updates.
func fakeHubspot(t *testing.T, properties map[string]string, updates *[]map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{"properties": properties})
		case http.MethodPatch:
			var body struct {
				Properties map[string]string `json:"properties"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			*updates = append(*updates, body.Properties)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

func TestSetUserEnrollmentSkipsPresentCourse(t *testing.T) {
	var updates []map[string]string
	srv := fakeHubspot(t, map[string]string{HubspotEnrollmentProperty: "hist101;phil201"}, &updates)
	defer srv.Close()

	client := NewHubspotClient("tok", srv.URL, srv.URL, srv.URL)
	require.NoError(t, client.SetUserEnrollment("u@example.com", "hist101", true))
	assert.Empty(t, updates)
}

func TestSetUserEnrollmentAddsCourse(t *testing.T) {
	var updates []map[string]string
	srv := fakeHubspot(t, map[string]string{HubspotEnrollmentProperty: "hist101"}, &updates)
	defer srv.Close()

	client := NewHubspotClient("tok", srv.URL, srv.URL, srv.URL)
	require.NoError(t, client.SetUserEnrollment("u@example.com", "phil201", true))
	require.Len(t, updates, 1)
	assert.Equal(t, "hist101;phil201", updates[0][HubspotEnrollmentProperty])
}

func TestRemovingLastCourseWritesSentinel(t *testing.T) {
	var updates []map[string]string
	srv := fakeHubspot(t, map[string]string{HubspotEnrollmentProperty: "hist101"}, &updates)
	defer srv.Close()

	client := NewHubspotClient("tok", srv.URL, srv.URL, srv.URL)
	require.NoError(t, client.SetUserEnrollment("u@example.com", "hist101", false))
	require.Len(t, updates, 1)
	assert.Equal(t, ";", updates[0][HubspotEnrollmentProperty])
}

func TestGetCoursesContactNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHubspotClient("tok", srv.URL, srv.URL, srv.URL)
	_, err := client.GetCourses("missing@example.com", HubspotEnrollmentProperty)
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestCompletionIsIdempotent(t *testing.T) {
	var updates []map[string]string
	srv := fakeHubspot(t, map[string]string{HubspotCompletionProperty: "hist101"}, &updates)
	defer srv.Close()

	client := NewHubspotClient("tok", srv.URL, srv.URL, srv.URL)
	require.NoError(t, client.SetUserCourseCompletion("u@example.com", "hist101"))
	assert.Empty(t, updates)

	require.NoError(t, client.SetUserCourseCompletion("u@example.com", "phil201"))
	require.Len(t, updates, 1)
	assert.Equal(t, "hist101;phil201", updates[0][HubspotCompletionProperty])
}
