package domain

import "time"

type PhotoKind string

const (
	KindPlace PhotoKind = "place"
	KindMenu  PhotoKind = "menu"
)

func (k PhotoKind) Valid() bool {
	return k == KindPlace || k == KindMenu
}

// PhotoRecord is owned by the backend. Position is dense and scoped to Kind.
type PhotoRecord struct {
	ID        string    `json:"id"`
	CafeID    string    `json:"cafe_id,omitempty"`
	URL       string    `json:"url"`
	ObjectKey string    `json:"-"`
	Kind      PhotoKind `json:"kind"`
	IsCover   bool      `json:"is_cover"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// SubmissionRecord is a moderated photo that is not yet part of a gallery.
type SubmissionRecord struct {
	ID        string           `json:"id"`
	CafeID    string           `json:"cafe_id"`
	URL       string           `json:"url"`
	Status    SubmissionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

type AvatarRecord struct {
	URL string `json:"url"`
}

// ConfirmResult holds exactly one of its fields, depending on the target scope.
type ConfirmResult struct {
	Photo      *PhotoRecord
	Submission *SubmissionRecord
	Avatar     *AvatarRecord
}

func ClonePhotos(photos []PhotoRecord) []PhotoRecord {
	if photos == nil {
		return []PhotoRecord{}
	}
	out := make([]PhotoRecord, len(photos))
	copy(out, photos)
	return out
}

const (
	DefaultConcurrency   = 3
	DefaultCacheTTL      = 10 * time.Minute
	DefaultJPEGQuality   = 92
	DefaultPreviewSize   = 256
	DefaultPresignTTL    = 15 * time.Minute
	DefaultMaxUploadSize = 32 << 20
)
