package operations

import (
	"fmt"
	"image"

	"cafe-media/internal/domain"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

type Rotator struct {
	jpegQuality int
}

func NewRotator(jpegQuality int) *Rotator {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = domain.DefaultJPEGQuality
	}
	return &Rotator{jpegQuality: jpegQuality}
}

// NormalizeQuarterTurns maps any turn count into 0..3, so -1 becomes 3.
func NormalizeQuarterTurns(turns int) int {
	return ((turns % 4) + 4) % 4
}

// Rotate turns the image clockwise by 90° per quarter turn. With no effective
// rotation the very same file is returned and nothing is re-encoded.
func (r *Rotator) Rotate(file *domain.File, quarterTurns int) (*domain.File, error) {
	turns := NormalizeQuarterTurns(quarterTurns)
	if turns == 0 {
		return file, nil
	}

	src, inputFormat, err := decode(file)
	if err != nil {
		return nil, &domain.FileError{File: file.Name, Err: fmt.Errorf("%w: %w", domain.ErrDecode, err)}
	}

	format := outputFormat(inputFormat)
	data, err := encode(rotateQuarterTurns(src, turns), format, r.jpegQuality)
	if err != nil {
		return nil, &domain.FileError{File: file.Name, Err: fmt.Errorf("%w: %w", domain.ErrEncode, err)}
	}

	return &domain.File{
		Name:        file.BaseName() + format.Extension(),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func rotateQuarterTurns(src image.Image, turns int) *image.RGBA {
	b := src.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	dw, dh := b.Dx(), b.Dy()
	if turns%2 == 1 {
		dw, dh = dh, dw
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	// s2d maps source coordinates onto the destination; rows are x' and y'.
	var s2d f64.Aff3
	switch turns {
	case 1:
		s2d = f64.Aff3{0, -1, h, 1, 0, 0}
	case 2:
		s2d = f64.Aff3{-1, 0, w, 0, -1, h}
	case 3:
		s2d = f64.Aff3{0, 1, 0, -1, 0, w}
	}

	minX, minY := float64(b.Min.X), float64(b.Min.Y)
	s2d[2] -= s2d[0]*minX + s2d[1]*minY
	s2d[5] -= s2d[3]*minX + s2d[4]*minY

	xdraw.NearestNeighbor.Transform(dst, s2d, src, b, xdraw.Src, nil)
	return dst
}
