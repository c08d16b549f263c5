package gallery

import (
	"fmt"

	"cafe-media/internal/domain"
)

// Draft is transient drag-and-drop state. It is never merged back into the
// cache: once Reorder returns, the draft is dropped in favour of the response.
type Draft struct {
	photos []domain.PhotoRecord
}

func NewDraft(photos []domain.PhotoRecord) *Draft {
	return &Draft{photos: domain.ClonePhotos(photos)}
}

// Move shifts the photo at from to index to, sliding the ones in between.
func (d *Draft) Move(from, to int) error {
	if from < 0 || from >= len(d.photos) || to < 0 || to >= len(d.photos) {
		return fmt.Errorf("move %d -> %d out of range for %d photos", from, to, len(d.photos))
	}
	if from == to {
		return nil
	}

	moved := d.photos[from]
	if from < to {
		copy(d.photos[from:to], d.photos[from+1:to+1])
	} else {
		copy(d.photos[to+1:from+1], d.photos[to:from])
	}
	d.photos[to] = moved
	return nil
}

func (d *Draft) Photos() []domain.PhotoRecord {
	return domain.ClonePhotos(d.photos)
}

func (d *Draft) IDs() []string {
	ids := make([]string, len(d.photos))
	for i, p := range d.photos {
		ids[i] = p.ID
	}
	return ids
}
