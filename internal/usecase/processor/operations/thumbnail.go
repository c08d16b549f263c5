package operations

import (
	"fmt"
	"image"

	"cafe-media/internal/domain"

	xdraw "golang.org/x/image/draw"
)

// Thumbnailer renders the small JPEG shown next to a queued file.
type Thumbnailer struct {
	size    int
	quality int
}

func NewThumbnailer(size int) *Thumbnailer {
	if size <= 0 {
		size = domain.DefaultPreviewSize
	}
	return &Thumbnailer{size: size, quality: 80}
}

// Preview returns JPEG bytes no larger than size on either side, turned by quarterTurns.
func (t *Thumbnailer) Preview(file *domain.File, quarterTurns int) ([]byte, error) {
	img, _, err := decode(file)
	if err != nil {
		return nil, &domain.FileError{File: file.Name, Err: fmt.Errorf("%w: %w", domain.ErrDecode, err)}
	}

	thumbnail := t.fit(img)
	if turns := NormalizeQuarterTurns(quarterTurns); turns != 0 {
		thumbnail = rotateQuarterTurns(thumbnail, turns)
	}

	data, err := encode(thumbnail, domain.FormatJPEG, t.quality)
	if err != nil {
		return nil, &domain.FileError{File: file.Name, Err: fmt.Errorf("%w: %w", domain.ErrEncode, err)}
	}
	return data, nil
}

func (t *Thumbnailer) fit(img image.Image) image.Image {
	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()

	if origWidth <= t.size && origHeight <= t.size {
		return img
	}

	var newWidth, newHeight int
	if origWidth > origHeight {
		newWidth = t.size
		newHeight = max(1, int(float64(origHeight)*float64(t.size)/float64(origWidth)))
	} else {
		newHeight = t.size
		newWidth = max(1, int(float64(origWidth)*float64(t.size)/float64(origHeight)))
	}

	return resizeImage(img, newWidth, newHeight)
}

func resizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}
