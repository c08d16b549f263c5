package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type TargetScope string

const (
	ScopeCafePhoto  TargetScope = "cafe_photo"
	ScopeMenuPhoto  TargetScope = "menu_photo"
	ScopeAvatar     TargetScope = "avatar"
	ScopeSubmission TargetScope = "submission_photo"
)

// UploadTarget says where an uploaded object ends up. CafeID is empty for avatars.
type UploadTarget struct {
	Scope  TargetScope
	CafeID string
}

func CafePhotoTarget(cafeID string) UploadTarget {
	return UploadTarget{Scope: ScopeCafePhoto, CafeID: cafeID}
}

func MenuPhotoTarget(cafeID string) UploadTarget {
	return UploadTarget{Scope: ScopeMenuPhoto, CafeID: cafeID}
}

func SubmissionTarget(cafeID string) UploadTarget {
	return UploadTarget{Scope: ScopeSubmission, CafeID: cafeID}
}

func AvatarTarget() UploadTarget {
	return UploadTarget{Scope: ScopeAvatar}
}

// Kind is the gallery kind a confirmed photo lands in. Empty for avatars and submissions.
func (t UploadTarget) Kind() PhotoKind {
	switch t.Scope {
	case ScopeCafePhoto:
		return KindPlace
	case ScopeMenuPhoto:
		return KindMenu
	default:
		return ""
	}
}

// Gallery reports whether confirming into this target produces a PhotoRecord.
func (t UploadTarget) Gallery() bool {
	return t.Kind() != ""
}

func (t UploadTarget) Validate() error {
	switch t.Scope {
	case ScopeCafePhoto, ScopeMenuPhoto, ScopeSubmission:
		if strings.TrimSpace(t.CafeID) == "" {
			return fmt.Errorf("%w: cafe id is required for %s", ErrInvalidTarget, t.Scope)
		}
		return nil
	case ScopeAvatar:
		return nil
	default:
		return fmt.Errorf("%w: unknown scope %q", ErrInvalidTarget, t.Scope)
	}
}

type PresignedUpload struct {
	UploadURL string
	Method    string
	Headers   map[string]string
	ObjectKey string
	FileURL   string
	ExpiresAt time.Time
}

func (p *PresignedUpload) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// ConfirmMetadata is ignored for submission and avatar targets.
type ConfirmMetadata struct {
	Kind     PhotoKind
	IsCover  bool
	Position int
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// BaseName is the file name without its extension.
func (f *File) BaseName() string {
	name := filepath.Base(f.Name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// PreviewHandle is a local resource that must be revoked exactly once.
type PreviewHandle struct {
	URI  string
	Path string
}

type PendingUploadItem struct {
	ID           string
	File         *File
	Preview      PreviewHandle
	QuarterTurns int
}

type ItemOutcome struct {
	ItemID     string
	FileName   string
	Index      int
	Photo      *PhotoRecord
	Submission *SubmissionRecord
	Avatar     *AvatarRecord
	Err        error
}

func (o ItemOutcome) Succeeded() bool {
	return o.Err == nil
}

// BatchResult is returned even when the batch failed; partial success is normal.
type BatchResult struct {
	Items  []ItemOutcome
	Photos []PhotoRecord
}

func (r *BatchResult) Succeeded() int {
	n := 0
	for _, item := range r.Items {
		if item.Succeeded() {
			n++
		}
	}
	return n
}

func (r *BatchResult) Failed() int {
	return len(r.Items) - r.Succeeded()
}

func (r *BatchResult) Summary() string {
	if r.Failed() == 0 {
		return fmt.Sprintf("%d of %d photos uploaded", r.Succeeded(), len(r.Items))
	}
	return fmt.Sprintf("%d of %d photos uploaded, %d failed", r.Succeeded(), len(r.Items), r.Failed())
}

// ObjectInfo is what the object store knows about an uploaded object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}
