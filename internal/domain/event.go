package domain

import "time"

type EventType string

const (
	EventPhotoConfirmed    EventType = "photo.confirmed"
	EventPhotoDeleted      EventType = "photo.deleted"
	EventPhotosReordered   EventType = "photos.reordered"
	EventCoverChanged      EventType = "photo.cover_changed"
	EventSubmissionCreated EventType = "submission.created"
	EventAvatarChanged     EventType = "avatar.changed"
)

// PhotoEvent is published by the backend after a committed change to a gallery.
type PhotoEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	CafeID     string    `json:"cafe_id,omitempty"`
	Kind       PhotoKind `json:"kind,omitempty"`
	PhotoID    string    `json:"photo_id,omitempty"`
	ObjectKey  string    `json:"object_key,omitempty"`
	PhotoIDs   []string  `json:"photo_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	PathPrefixCafes       = "cafes/"
	PathPrefixSubmissions = "submissions/"
	PathPrefixAvatars     = "avatars/"
)
