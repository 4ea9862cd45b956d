package social_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/studio-agent/internal/adapters/social"
	"github.com/PabloGalante/studio-agent/internal/domain"
)

func TestNewFacebookPageRequiresCredentials(t *testing.T) {
	assert.Nil(t, social.NewFacebookPage("", "tok", "", ""))
	assert.Nil(t, social.NewFacebookPage("123", "", "", ""))
}

func TestFacebookPublish(t *testing.T) {
	var gotPath, gotMessage, gotToken, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		assert.NoError(t, r.ParseForm())
		gotMessage = r.PostForm.Get("message")
		gotToken = r.PostForm.Get("access_token")
		_, _ = io.WriteString(w, `{"id":"123_456"}`)
	}))
	defer srv.Close()

	fb := social.NewFacebookPage("123", "tok", srv.URL+"/", "v23.0")
	id, err := fb.Publish(context.Background(), "မင်္ဂလာပါ")
	require.NoError(t, err)

	assert.Equal(t, "123_456", id)
	assert.Equal(t, "/v23.0/123/feed", gotPath)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "မင်္ဂလာပါ", gotMessage)
	assert.Equal(t, "tok", gotToken)
}

func TestFacebookPublishMissingIDIsPosted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	id, err := social.NewFacebookPage("1", "t", srv.URL, "").Publish(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "posted", id)
}

func TestFacebookPublishErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "graph error object",
			status:     http.StatusBadRequest,
			body:       `{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid OAuth access token.",
		},
		{
			name:       "error with 200",
			status:     http.StatusOK,
			body:       `{"error":{"message":"Duplicate status message"}}`,
			wantStatus: http.StatusOK,
			wantMsg:    "Duplicate status message",
		},
		{
			name:       "non json failure",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Facebook API error (500)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := social.NewFacebookPage("1", "t", srv.URL, "v23.0").Publish(context.Background(), "x")
			upErr, ok := domain.AsUpstream(err)
			require.True(t, ok, "expected UpstreamError, got %v", err)
			assert.Equal(t, tt.wantStatus, upErr.Status)
			assert.Equal(t, tt.wantMsg, upErr.Message)
		})
	}
}
