package photo_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cafe-media/internal/domain"
	"cafe-media/internal/http-server/handler/photo"
	"cafe-media/internal/http-server/handler/photo/dto"
	"cafe-media/internal/http-server/router"
	repoPhoto "cafe-media/internal/repository/photo"
	"cafe-media/internal/repository/photo/memory"
	media_uc "cafe-media/internal/usecase/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

type files struct {
	mu  sync.Mutex
	put map[string]bool
}

func (f *files) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://minio.local/bucket/" + key, nil
}

func (f *files) Stat(_ context.Context, key string) (*domain.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.put[key] {
		return nil, repoPhoto.ErrObjectNotFound
	}
	return &domain.ObjectInfo{Key: key}, nil
}

func (f *files) markUploaded(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put[key] = true
}

func (f *files) Remove(context.Context, string) error { return nil }

func (f *files) ObjectURL(key string) string { return "http://cdn.local/" + key }

type noEvents struct{}

func (noEvents) Publish(context.Context, domain.PhotoEvent) error { return nil }

func newServer(t *testing.T) (*httptest.Server, *files) {
	t.Helper()
	store := &files{put: make(map[string]bool)}
	uc := media_uc.NewMediaUsecase(memory.NewPhotosRepository(), store, noEvents{}, &zlog.Logger, time.Minute, 1<<20)
	h := &router.Handler{PhotoHandler: photo.NewPhotoHandler(uc, &zlog.Logger)}
	srv := httptest.NewServer(router.SetupRouter(h, &zlog.Logger))
	t.Cleanup(srv.Close)
	return srv, store
}

func call(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func confirmPhoto(t *testing.T, srv *httptest.Server, store *files, kind string, isCover bool) domain.PhotoRecord {
	t.Helper()

	var presigned dto.PresignResponse
	status := call(t, srv, http.MethodPost, "/api/cafes/c1/photos/presign",
		`{"kind":"`+kind+`","content_type":"image/jpeg","size_bytes":10}`, &presigned)
	require.Equal(t, http.StatusOK, status)

	store.markUploaded(presigned.ObjectKey)

	body, err := json.Marshal(dto.ConfirmRequest{ObjectKey: presigned.ObjectKey, Kind: domain.PhotoKind(kind), IsCover: &isCover})
	require.NoError(t, err)

	var p domain.PhotoRecord
	status = call(t, srv, http.MethodPost, "/api/cafes/c1/photos/confirm", string(body), &p)
	require.Equal(t, http.StatusCreated, status)
	return p
}

func TestPresign(t *testing.T) {
	srv, _ := newServer(t)

	var resp dto.PresignResponse
	status := call(t, srv, http.MethodPost, "/api/cafes/c1/photos/presign",
		`{"kind":"menu","content_type":"image/webp","size_bytes":2048}`, &resp)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "PUT", resp.Method)
	assert.True(t, strings.HasPrefix(resp.ObjectKey, "cafes/c1/menu/"), resp.ObjectKey)
	assert.True(t, strings.HasSuffix(resp.ObjectKey, ".webp"))
	assert.Equal(t, "http://minio.local/bucket/"+resp.ObjectKey, resp.UploadURL)
	assert.Equal(t, "image/webp", resp.Headers["Content-Type"])
}

func TestPresign_Errors(t *testing.T) {
	srv, _ := newServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{name: "pdf", path: "/api/cafes/c1/photos/presign", body: `{"content_type":"application/pdf","size_bytes":1}`, status: http.StatusUnsupportedMediaType},
		{name: "too large", path: "/api/cafes/c1/photos/presign", body: `{"content_type":"image/png","size_bytes":99999999}`, status: http.StatusRequestEntityTooLarge},
		{name: "bad kind", path: "/api/cafes/c1/photos/presign", body: `{"kind":"logo","content_type":"image/png"}`, status: http.StatusBadRequest},
		{name: "missing type", path: "/api/me/avatar/presign", body: `{}`, status: http.StatusBadRequest},
		{name: "not json", path: "/api/cafes/c1/submissions/photos/presign", body: `nope`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp dto.ErrorResponse
			status := call(t, srv, http.MethodPost, tt.path, tt.body, &resp)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, http.StatusText(tt.status), resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestConfirm_NotUploaded(t *testing.T) {
	srv, _ := newServer(t)

	var presigned dto.PresignResponse
	call(t, srv, http.MethodPost, "/api/cafes/c1/photos/presign", `{"content_type":"image/png","size_bytes":1}`, &presigned)

	status := call(t, srv, http.MethodPost, "/api/cafes/c1/photos/confirm", `{"object_key":"`+presigned.ObjectKey+`"}`, nil)
	assert.Equal(t, http.StatusConflict, status)

	status = call(t, srv, http.MethodPost, "/api/cafes/c2/photos/confirm", `{"object_key":"`+presigned.ObjectKey+`"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGalleryLifecycle(t *testing.T) {
	srv, store := newServer(t)

	a := confirmPhoto(t, srv, store, "place", true)
	b := confirmPhoto(t, srv, store, "place", false)
	m := confirmPhoto(t, srv, store, "menu", false)
	assert.True(t, a.IsCover)
	assert.Equal(t, 2, b.Position)

	var list dto.PhotosResponse
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/api/cafes/c1/photos?kind=place", "", &list))
	require.Len(t, list.Photos, 2)
	assert.Equal(t, a.ID, list.Photos[0].ID)

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPatch, "/api/cafes/c1/photos/order?kind=place",
		`{"photo_ids":["`+b.ID+`","`+a.ID+`"]}`, &list))
	assert.Equal(t, b.ID, list.Photos[0].ID)
	assert.Equal(t, 1, list.Photos[0].Position)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPatch, "/api/cafes/c1/photos/order",
		`{"photo_ids":[]}`, nil), "kind is required")
	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPatch, "/api/cafes/c1/photos/order?kind=place",
		`{"photo_ids":["`+b.ID+`"]}`, nil))

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPatch, "/api/cafes/c1/photos/"+b.ID+"/cover", "", &list))
	for _, p := range list.Photos {
		assert.Equal(t, p.ID == b.ID, p.IsCover)
	}

	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPatch, "/api/cafes/c1/photos/"+m.ID+"/cover", "", nil))
	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodDelete, "/api/cafes/c1/photos/missing", "", nil))

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodDelete, "/api/cafes/c1/photos/"+b.ID, "", &list))
	require.Len(t, list.Photos, 1)
	assert.Equal(t, a.ID, list.Photos[0].ID)
	assert.True(t, list.Photos[0].IsCover)
	assert.Equal(t, 1, list.Photos[0].Position)
}

func TestSubmissionAndAvatar(t *testing.T) {
	srv, store := newServer(t)

	var presigned dto.PresignResponse
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/api/cafes/c1/submissions/photos/presign",
		`{"content_type":"image/jpeg","size_bytes":1}`, &presigned))
	store.markUploaded(presigned.ObjectKey)

	var submission domain.SubmissionRecord
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, "/api/cafes/c1/submissions/photos/confirm",
		`{"object_key":"`+presigned.ObjectKey+`"}`, &submission))
	assert.Equal(t, domain.SubmissionPending, submission.Status)

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/api/me/avatar/presign",
		`{"content_type":"image/png","size_bytes":1}`, &presigned))
	store.markUploaded(presigned.ObjectKey)

	var avatar domain.AvatarRecord
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/api/me/avatar/confirm",
		`{"object_key":"`+presigned.ObjectKey+`"}`, &avatar))
	assert.Equal(t, "http://cdn.local/"+presigned.ObjectKey, avatar.URL)
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t)

	var body map[string]string
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/api/health", "", &body))
	assert.Equal(t, "ok", body["status"])
}
