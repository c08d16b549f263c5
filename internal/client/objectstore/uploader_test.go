package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cafe-media/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

func TestPut(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		assert.Equal(t, "abc", r.Header.Get("X-Amz-Meta-Origin"))
		assert.EqualValues(t, 5, r.ContentLength)
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	uploader := NewUploader(srv.Client(), &zlog.Logger)
	upload := &domain.PresignedUpload{
		UploadURL: srv.URL + "/bucket/key?X-Amz-Signature=secret",
		Method:    http.MethodPut,
		Headers:   map[string]string{"Content-Type": "image/png", "X-Amz-Meta-Origin": "abc"},
		ObjectKey: "key",
	}

	err := uploader.Put(context.Background(), upload, &domain.File{Name: "a.png", ContentType: "image/png", Data: []byte("hello")})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestPut_NoRetryOnFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	uploader := NewUploader(srv.Client(), &zlog.Logger)
	upload := &domain.PresignedUpload{UploadURL: srv.URL + "/k?X-Amz-Signature=secret", ObjectKey: "k"}

	err := uploader.Put(context.Background(), upload, &domain.File{Name: "a.jpg", Data: []byte("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUploadTransport)
	assert.EqualValues(t, 1, calls.Load())
	assert.NotContains(t, err.Error(), "secret")
}

func TestPut_TransportErrorHidesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	uploader := NewUploader(nil, &zlog.Logger)
	upload := &domain.PresignedUpload{UploadURL: endpoint + "/k?X-Amz-Credential=AKIA-secret", ObjectKey: "k"}

	err := uploader.Put(context.Background(), upload, &domain.File{Name: "a.jpg", Data: []byte("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUploadTransport)
	assert.NotContains(t, err.Error(), "AKIA-secret")
	assert.Equal(t, "Upload failed, please try again", domain.UserMessage(err))
}

func TestPut_ExpiredPresign(t *testing.T) {
	uploader := NewUploader(nil, &zlog.Logger)
	upload := &domain.PresignedUpload{UploadURL: "http://unused.invalid/k", ExpiresAt: time.Now().Add(-time.Minute)}

	err := uploader.Put(context.Background(), upload, &domain.File{Name: "a.jpg", Data: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrPresignExpired)
	assert.ErrorIs(t, err, domain.ErrUploadTransport)
}
