package media

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"cafe-media/internal/domain"
	repoPhoto "cafe-media/internal/repository/photo"
	"cafe-media/internal/repository/photo/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

type fakeFiles struct {
	mu       sync.Mutex
	uploaded map[string]bool
	removed  []string
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{uploaded: make(map[string]bool)}
}

func (f *fakeFiles) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://minio.local/cafe-photos/" + key + "?X-Amz-Signature=abc", nil
}

func (f *fakeFiles) Stat(_ context.Context, key string) (*domain.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.uploaded[key] {
		return nil, repoPhoto.ErrObjectNotFound
	}
	return &domain.ObjectInfo{Key: key, Size: 10, ContentType: domain.MimeJPEG}, nil
}

func (f *fakeFiles) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
	delete(f.uploaded, key)
	return nil
}

func (f *fakeFiles) ObjectURL(key string) string {
	return "http://cdn.local/" + key
}

func (f *fakeFiles) put(key string) {
	f.mu.Lock()
	f.uploaded[key] = true
	f.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.PhotoEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.PhotoEvent) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	uc     *MediaUsecase
	files  *fakeFiles
	events *recordingPublisher
}

func newFixture() *fixture {
	files := newFakeFiles()
	events := &recordingPublisher{}
	uc := NewMediaUsecase(memory.NewPhotosRepository(), files, events, &zlog.Logger, time.Minute, 1<<20)
	return &fixture{uc: uc, files: files, events: events}
}

// upload presigns, pretends the client PUT the bytes and confirms.
func (f *fixture) upload(t *testing.T, target domain.UploadTarget, meta domain.ConfirmMetadata) *domain.ConfirmResult {
	t.Helper()
	ctx := context.Background()

	presigned, err := f.uc.Presign(ctx, target, "image/jpeg", 100)
	require.NoError(t, err)
	f.files.put(presigned.ObjectKey)

	result, err := f.uc.Confirm(ctx, target, presigned.ObjectKey, meta)
	require.NoError(t, err)
	return result
}

func ids(photos []domain.PhotoRecord) []string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = p.ID
	}
	return out
}

func assertDense(t *testing.T, photos []domain.PhotoRecord) {
	t.Helper()
	for i, p := range photos {
		assert.Equal(t, i+1, p.Position, "photo %s", p.ID)
	}
}

func coverCount(photos []domain.PhotoRecord) int {
	n := 0
	for _, p := range photos {
		if p.IsCover {
			n++
		}
	}
	return n
}

func TestPresign_Keys(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		target domain.UploadTarget
		prefix string
	}{
		{target: domain.CafePhotoTarget("c1"), prefix: "cafes/c1/place/"},
		{target: domain.MenuPhotoTarget("c1"), prefix: "cafes/c1/menu/"},
		{target: domain.SubmissionTarget("c1"), prefix: "submissions/c1/"},
		{target: domain.AvatarTarget(), prefix: "avatars/"},
	}

	for _, tt := range tests {
		t.Run(string(tt.target.Scope), func(t *testing.T) {
			presigned, err := f.uc.Presign(ctx, tt.target, "image/png", 100)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(presigned.ObjectKey, tt.prefix), presigned.ObjectKey)
			assert.True(t, strings.HasSuffix(presigned.ObjectKey, ".png"))
			assert.Equal(t, "PUT", presigned.Method)
			assert.Equal(t, "image/png", presigned.Headers["Content-Type"])
			assert.Equal(t, "http://cdn.local/"+presigned.ObjectKey, presigned.FileURL)
			assert.False(t, presigned.ExpiresAt.IsZero())
		})
	}
}

func TestPresign_Rejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Presign(ctx, domain.CafePhotoTarget("c1"), "application/pdf", 10)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = f.uc.Presign(ctx, domain.CafePhotoTarget("c1"), "image/jpeg", 2<<20)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = f.uc.Presign(ctx, domain.CafePhotoTarget(""), "image/jpeg", 10)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestConfirm_PositionsAndCover(t *testing.T) {
	f := newFixture()
	target := domain.CafePhotoTarget("c1")

	a := f.upload(t, target, domain.ConfirmMetadata{Kind: domain.KindPlace, IsCover: true, Position: 1}).Photo
	b := f.upload(t, target, domain.ConfirmMetadata{Kind: domain.KindPlace, Position: 2}).Photo
	assert.True(t, a.IsCover)
	assert.Equal(t, 1, a.Position)
	assert.Equal(t, 2, b.Position)

	// inserting at the front shifts the rest and a new cover replaces the old one
	c := f.upload(t, target, domain.ConfirmMetadata{Kind: domain.KindPlace, IsCover: true, Position: 1}).Photo
	assert.Equal(t, 1, c.Position)

	photos, err := f.uc.ListPhotos(context.Background(), "c1", domain.KindPlace)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids(photos))
	assertDense(t, photos)
	assert.Equal(t, 1, coverCount(photos))
	assert.True(t, photos[0].IsCover)

	assert.Contains(t, f.events.types(), domain.EventPhotoConfirmed)
	assert.Contains(t, f.events.types(), domain.EventCoverChanged)
}

// vanishingSibling deletes victim right before every insert, as a concurrent
// writer would.
type vanishingSibling struct {
	*memory.PhotosRepository
	victim string
}

func (r *vanishingSibling) InsertPhoto(ctx context.Context, p *domain.PhotoRecord, layout []domain.PhotoRecord) error {
	if r.victim != "" {
		_ = r.DeletePhoto(ctx, p.CafeID, r.victim)
	}
	return r.PhotosRepository.InsertPhoto(ctx, p, layout)
}

func TestConfirm_FailedLayoutLeavesNoRecord(t *testing.T) {
	repo := &vanishingSibling{PhotosRepository: memory.NewPhotosRepository()}
	files := newFakeFiles()
	events := &recordingPublisher{}
	f := &fixture{
		uc:     NewMediaUsecase(repo, files, events, &zlog.Logger, time.Minute, 1<<20),
		files:  files,
		events: events,
	}
	ctx := context.Background()
	target := domain.CafePhotoTarget("c1")

	a := f.upload(t, target, domain.ConfirmMetadata{Kind: domain.KindPlace, IsCover: true, Position: 1}).Photo
	repo.victim = a.ID
	confirmed := len(f.events.types())

	presigned, err := f.uc.Presign(ctx, target, "image/jpeg", 100)
	require.NoError(t, err)
	f.files.put(presigned.ObjectKey)

	_, err = f.uc.Confirm(ctx, target, presigned.ObjectKey, domain.ConfirmMetadata{Kind: domain.KindPlace, Position: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, repoPhoto.ErrPhotoNotFound)

	photos, err := f.uc.ListPhotos(ctx, "c1", domain.KindPlace)
	require.NoError(t, err)
	assert.Empty(t, photos, "the new photo must not be stored without its layout")
	assert.Len(t, f.events.types(), confirmed)
}

func TestConfirm_PositionOutOfRangeAppends(t *testing.T) {
	f := newFixture()
	target := domain.MenuPhotoTarget("c1")

	f.upload(t, target, domain.ConfirmMetadata{})
	p := f.upload(t, target, domain.ConfirmMetadata{Position: 42}).Photo
	assert.Equal(t, 2, p.Position)
	assert.Equal(t, domain.KindMenu, p.Kind)
}

func TestConfirm_Rejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	presigned, err := f.uc.Presign(ctx, domain.CafePhotoTarget("c1"), "image/jpeg", 10)
	require.NoError(t, err)

	_, err = f.uc.Confirm(ctx, domain.CafePhotoTarget("c1"), presigned.ObjectKey, domain.ConfirmMetadata{})
	assert.ErrorIs(t, err, ErrObjectNotUploaded)

	f.files.put(presigned.ObjectKey)
	_, err = f.uc.Confirm(ctx, domain.CafePhotoTarget("c2"), presigned.ObjectKey, domain.ConfirmMetadata{})
	assert.ErrorIs(t, err, ErrForeignObjectKey)

	_, err = f.uc.Confirm(ctx, domain.MenuPhotoTarget("c1"), presigned.ObjectKey, domain.ConfirmMetadata{})
	assert.ErrorIs(t, err, ErrForeignObjectKey)

	_, err = f.uc.Confirm(ctx, domain.CafePhotoTarget("c1"), "cafes/c1/place/../../c2/x.jpg", domain.ConfirmMetadata{})
	assert.ErrorIs(t, err, ErrForeignObjectKey)

	menu, err := f.uc.Presign(ctx, domain.MenuPhotoTarget("c1"), "image/jpeg", 10)
	require.NoError(t, err)
	f.files.put(menu.ObjectKey)
	_, err = f.uc.Confirm(ctx, domain.MenuPhotoTarget("c1"), menu.ObjectKey, domain.ConfirmMetadata{IsCover: true})
	assert.ErrorIs(t, err, ErrCoverNotSupported)
}

func TestConfirm_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	target := domain.CafePhotoTarget("c1")

	presigned, err := f.uc.Presign(ctx, target, "image/jpeg", 10)
	require.NoError(t, err)
	f.files.put(presigned.ObjectKey)

	first, err := f.uc.Confirm(ctx, target, presigned.ObjectKey, domain.ConfirmMetadata{})
	require.NoError(t, err)
	second, err := f.uc.Confirm(ctx, target, presigned.ObjectKey, domain.ConfirmMetadata{})
	require.NoError(t, err)
	assert.Equal(t, first.Photo.ID, second.Photo.ID)

	photos, err := f.uc.ListPhotos(ctx, "c1", domain.KindPlace)
	require.NoError(t, err)
	assert.Len(t, photos, 1)
}

func TestConfirm_SubmissionAndAvatar(t *testing.T) {
	f := newFixture()

	sub := f.upload(t, domain.SubmissionTarget("c1"), domain.ConfirmMetadata{})
	require.NotNil(t, sub.Submission)
	assert.Nil(t, sub.Photo)
	assert.Equal(t, domain.SubmissionPending, sub.Submission.Status)
	assert.Equal(t, "c1", sub.Submission.CafeID)

	avatar := f.upload(t, domain.AvatarTarget(), domain.ConfirmMetadata{})
	require.NotNil(t, avatar.Avatar)
	assert.True(t, strings.HasPrefix(avatar.Avatar.URL, "http://cdn.local/avatars/"))

	photos, err := f.uc.ListPhotos(context.Background(), "c1", "")
	require.NoError(t, err)
	assert.Empty(t, photos)
	assert.Equal(t, []domain.EventType{domain.EventSubmissionCreated, domain.EventAvatarChanged}, f.events.types())
}

func TestReorder(t *testing.T) {
	f := newFixture()
	target := domain.CafePhotoTarget("c1")
	a := f.upload(t, target, domain.ConfirmMetadata{IsCover: true}).Photo
	b := f.upload(t, target, domain.ConfirmMetadata{}).Photo
	c := f.upload(t, target, domain.ConfirmMetadata{}).Photo
	ctx := context.Background()

	photos, err := f.uc.Reorder(ctx, "c1", domain.KindPlace, []string{c.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids(photos))
	assertDense(t, photos)
	assert.True(t, photos[1].IsCover, "reorder keeps the cover")

	stored, err := f.uc.ListPhotos(ctx, "c1", domain.KindPlace)
	require.NoError(t, err)
	assert.Equal(t, photos, stored)

	_, err = f.uc.Reorder(ctx, "c1", domain.KindPlace, []string{c.ID, a.ID})
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = f.uc.Reorder(ctx, "c1", domain.KindPlace, []string{c.ID, c.ID, a.ID})
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = f.uc.Reorder(ctx, "c1", "gallery", []string{})
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestSetCover(t *testing.T) {
	f := newFixture()
	a := f.upload(t, domain.CafePhotoTarget("c1"), domain.ConfirmMetadata{IsCover: true}).Photo
	b := f.upload(t, domain.CafePhotoTarget("c1"), domain.ConfirmMetadata{}).Photo
	m := f.upload(t, domain.MenuPhotoTarget("c1"), domain.ConfirmMetadata{}).Photo
	ctx := context.Background()

	photos, err := f.uc.SetCover(ctx, "c1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, ids(photos))
	assert.False(t, photos[0].IsCover)
	assert.True(t, photos[1].IsCover)

	_, err = f.uc.SetCover(ctx, "c1", m.ID)
	assert.ErrorIs(t, err, ErrCoverNotSupported)

	_, err = f.uc.SetCover(ctx, "c2", b.ID)
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}

func TestDelete_PromotesNextCover(t *testing.T) {
	f := newFixture()
	target := domain.CafePhotoTarget("c1")
	a := f.upload(t, target, domain.ConfirmMetadata{IsCover: true}).Photo
	b := f.upload(t, target, domain.ConfirmMetadata{}).Photo
	c := f.upload(t, target, domain.ConfirmMetadata{}).Photo
	ctx := context.Background()

	photos, err := f.uc.DeletePhoto(ctx, "c1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, c.ID}, ids(photos))
	assertDense(t, photos)
	assert.True(t, photos[0].IsCover)
	assert.Equal(t, 1, coverCount(photos))
	assert.Equal(t, []string{a.ObjectKey}, f.files.removed)

	_, err = f.uc.DeletePhoto(ctx, "c1", a.ID)
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}

func TestDelete_RepacksMenu(t *testing.T) {
	f := newFixture()
	target := domain.MenuPhotoTarget("c1")
	a := f.upload(t, target, domain.ConfirmMetadata{}).Photo
	b := f.upload(t, target, domain.ConfirmMetadata{}).Photo
	c := f.upload(t, target, domain.ConfirmMetadata{}).Photo

	photos, err := f.uc.DeletePhoto(context.Background(), "c1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID}, ids(photos))
	assertDense(t, photos)
	assert.Equal(t, 0, coverCount(photos))
}
