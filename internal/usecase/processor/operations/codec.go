package operations

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"cafe-media/internal/domain"

	"github.com/chai2010/webp"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ContentTypeOf trusts the declared type and sniffs the bytes when there is none.
func ContentTypeOf(file *domain.File) string {
	if ct := domain.NormalizeContentType(file.ContentType); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return domain.NormalizeContentType(mimetype.Detect(file.Data).String())
}

func decode(file *domain.File) (image.Image, domain.ImageFormat, error) {
	format := domain.FormatFromContentType(ContentTypeOf(file))

	if format == domain.FormatWebP {
		img, err := webp.Decode(bytes.NewReader(file.Data))
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode webp: %w", err)
		}
		return img, format, nil
	}

	img, name, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", format.ContentType(), err)
	}
	if format == "" {
		format = domain.ImageFormat(name)
	}

	return img, format, nil
}

// outputFormat keeps the formats browsers render everywhere and turns the rest into JPEG.
func outputFormat(input domain.ImageFormat) domain.ImageFormat {
	switch input {
	case domain.FormatJPEG, domain.FormatPNG, domain.FormatWebP:
		return input
	default:
		return domain.FormatJPEG
	}
}

func encode(img image.Image, format domain.ImageFormat, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	var err error

	switch format {
	case domain.FormatPNG:
		err = png.Encode(buf, img)
	case domain.FormatWebP:
		err = webp.Encode(buf, img, &webp.Options{Quality: float32(quality)})
	default:
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: quality})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}

	return buf.Bytes(), nil
}
