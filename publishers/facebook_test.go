package publishers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"NexoraPanel/utils"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *FacebookClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewFacebookClient(srv.Client(), srv.URL+"/", "v19.0")
}

func TestResolvePagesFollowsPaging(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v19.0/me/accounts", r.URL.Path)
		require.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("after") == "" {
			require.Equal(t, "id,name,access_token", r.URL.Query().Get("fields"))
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{
					{"id": "1", "name": "Nexora Suite", "access_token": "t1"},
					{"id": "2", "name": "No Token"},
				},
				"paging": map[string]string{"next": srvURL + "/v19.0/me/accounts?after=c1"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"id": "3", "name": "Nexora Management", "access_token": "t3"}},
		})
	}))
	defer srv.Close()
	srvURL = srv.URL

	client := NewFacebookClient(srv.Client(), srv.URL, "v19.0")
	pages, err := client.ResolvePages(context.Background(), " user-token ")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	require.Equal(t, "t1", pages["1"].AccessToken)
	require.Equal(t, "No Token", pages["2"].Name)
	require.Empty(t, pages["2"].AccessToken)
	require.Equal(t, "t3", pages["3"].AccessToken)
}

func TestResolvePagesStopsAtCursorLimit(t *testing.T) {
	var logs bytes.Buffer
	utils.SetLogOutput(&logs)
	t.Cleanup(func() { utils.SetLogOutput(os.Stdout) })

	var hits int32
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"data":   []map[string]string{{"id": fmt.Sprintf("p%d", n), "name": "Page", "access_token": "t"}},
			"paging": map[string]string{"next": fmt.Sprintf("%s/v19.0/me/accounts?after=c%d", srvURL, n)},
		})
	}))
	defer srv.Close()
	srvURL = srv.URL

	client := NewFacebookClient(srv.Client(), srv.URL, "v19.0")
	pages, err := client.ResolvePages(context.Background(), "user-token")
	require.NoError(t, err)
	require.Len(t, pages, maxAccountPages)
	require.Equal(t, int32(maxAccountPages), atomic.LoadInt32(&hits))
	require.Contains(t, logs.String(), "page directory truncated")
}

func TestResolvePagesEmptyTokenSkipsNetwork(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	_, err := client.ResolvePages(context.Background(), "   ")
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.Zero(t, authErr.StatusCode)
	require.Zero(t, atomic.LoadInt32(&hits))
}

func TestResolvePagesRejectedToken(t *testing.T) {
	const body = `{"error":{"message":"Error validating access token: Session has expired","type":"OAuthException","code":190}}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, body)
	})

	pages, err := client.ResolvePages(context.Background(), "expired")
	require.Nil(t, pages)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, http.StatusBadRequest, authErr.StatusCode)
	require.Equal(t, 190, authErr.Code)
	require.Equal(t, body, authErr.Body)
	require.True(t, authErr.Expired())
	require.Contains(t, authErr.Error(), "Session has expired")
}

func TestAuthErrorExpired(t *testing.T) {
	tests := []struct {
		name string
		err  AuthError
		want bool
	}{
		{name: "invalid token", err: AuthError{Code: 190}, want: true},
		{name: "bad signature", err: AuthError{Code: 192}, want: true},
		{name: "token throttle", err: AuthError{Code: 467, Message: "Invalid Token"}, want: true},
		{name: "other throttle", err: AuthError{Code: 467, Message: "rate limited"}, want: false},
		{name: "permission", err: AuthError{Code: 200, Message: "token lacks pages_show_list"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.err.Expired())
		})
	}
}

func TestPostTextSendsForm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v19.0/PAGE/feed", r.URL.Path)
		require.Equal(t, "Bearer page-token", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "hello world", r.PostForm.Get("message"))
		require.Equal(t, "https://cdn.example.com/a.jpg", r.PostForm.Get("link"))
		io.WriteString(w, `{"id":"PAGE_123"}`)
	})

	id, err := client.PostText(context.Background(), "PAGE", "page-token", "hello world", "https://cdn.example.com/a.jpg")
	require.NoError(t, err)
	require.Equal(t, "PAGE_123", id)
}

func TestPostTextWithoutLink(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		_, hasLink := r.PostForm["link"]
		require.False(t, hasLink)
		io.WriteString(w, `{"id":"PAGE_1"}`)
	})

	_, err := client.PostText(context.Background(), "PAGE", "tok", "plain", "")
	require.NoError(t, err)
}

func TestPostRejected(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "graph error", status: http.StatusForbidden, body: `{"error":{"message":"(#200) permission","code":200}}`},
		{name: "ok without id", status: http.StatusOK, body: `{"success":true}`},
		{name: "ok not json", status: http.StatusOK, body: `<html></html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			id, err := client.PostText(context.Background(), "PAGE", "tok", "m", "")
			require.Empty(t, id)
			var delivery *DeliveryError
			require.True(t, errors.As(err, &delivery))
			require.Equal(t, tt.status, delivery.StatusCode)
			require.Equal(t, tt.body, delivery.Body)
		})
	}
}

func TestPostPhotoUploadsMultipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "banner.png")
	content := []byte("\x89PNG\r\n\x1a\nrest-of-image")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v19.0/PAGE/photos", r.URL.Path)
		require.Equal(t, "Bearer page-token", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "caption", r.FormValue("message"))

		file, header, err := r.FormFile("source")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "banner.png", header.Filename)
		require.Equal(t, "image/png", header.Header.Get("Content-Type"))
		got, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, content, got)

		io.WriteString(w, `{"id":"photo_9","post_id":"PAGE_9"}`)
	})

	id, err := client.PostPhoto(context.Background(), Photo{
		PageID:    "PAGE",
		PageToken: "page-token",
		Message:   "caption",
		Path:      path,
		MimeType:  "image/png",
	})
	require.NoError(t, err)
	require.Equal(t, "photo_9", id)
}

func TestPostPhotoMissingFile(t *testing.T) {
	var hits int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	_, err := client.PostPhoto(context.Background(), Photo{PageID: "PAGE", PageToken: "tok", Path: filepath.Join(t.TempDir(), "gone.png")})
	require.Error(t, err)
	require.Zero(t, atomic.LoadInt32(&hits))
}
