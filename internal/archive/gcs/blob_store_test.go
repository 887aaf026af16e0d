package gcs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func newTestClient(t *testing.T, handler http.Handler) (*storage.Client, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := storage.NewClient(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, server.URL
}

func TestNewValidatesInput(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "b"})
	require.Error(t, err)

	client, _ := newTestClient(t, http.NotFoundHandler())
	_, err = New(client, Config{})
	require.Error(t, err)
}

func TestPutObjectUploads(t *testing.T) {
	t.Parallel()

	const (
		bucket = "archive-bucket"
		object = "pages/2026-10-18/abc.html"
	)
	var gotBody string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, fmt.Sprintf("/b/%s/o", bucket))
		assert.Equal(t, object, r.URL.Query().Get("name"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		gotBody = string(body)
		fmt.Fprintf(w, `{"name": %q, "bucket": %q}`, object, bucket)
	}))

	s, err := New(client, Config{Bucket: bucket})
	require.NoError(t, err)

	uri, err := s.PutObject(context.Background(), object, "text/html; charset=utf-8", strings.NewReader("<html>hi</html>"))
	require.NoError(t, err)
	assert.Equal(t, "gs://archive-bucket/"+object, uri)
	assert.Contains(t, gotBody, "<html>hi</html>")
	assert.Contains(t, gotBody, "text/html")
	require.NoError(t, s.Close(), "borrowed client is not closed")
}

func TestPutObjectServerError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	s, err := New(client, Config{Bucket: "b"})
	require.NoError(t, err)

	_, err = s.PutObject(context.Background(), "x.html", "", strings.NewReader("x"))
	require.Error(t, err)

	_, err = s.PutObject(context.Background(), " ", "", strings.NewReader("x"))
	require.Error(t, err)
}

func TestOpenChecksBucket(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/b/present") {
			fmt.Fprint(w, `{"name": "present"}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	opts := []option.ClientOption{option.WithEndpoint(server.URL), option.WithoutAuthentication()}

	s, err := Open(context.Background(), Config{Bucket: "present"}, zap.NewNop(), opts...)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(context.Background(), Config{Bucket: "absent"}, zap.NewNop(), opts...)
	require.Error(t, err)

	_, err = Open(context.Background(), Config{}, zap.NewNop(), opts...)
	require.Error(t, err)
}
