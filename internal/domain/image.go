package domain

import "strings"

type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatWebP ImageFormat = "webp"
	FormatAVIF ImageFormat = "avif"
	FormatGIF  ImageFormat = "gif"
	FormatBMP  ImageFormat = "bmp"
	FormatTIFF ImageFormat = "tiff"
)

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeWebP = "image/webp"
	MimeAVIF = "image/avif"
)

// AcceptedMediaTypes are the types a user may queue for upload.
var AcceptedMediaTypes = []string{MimeJPEG, MimePNG, MimeWebP, MimeAVIF}

func IsAcceptedMediaType(contentType string) bool {
	contentType = NormalizeContentType(contentType)
	for _, accepted := range AcceptedMediaTypes {
		if contentType == accepted {
			return true
		}
	}
	return false
}

// NormalizeContentType drops parameters and lower-cases the media type.
func NormalizeContentType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "image/jpg" || contentType == "image/pjpeg" {
		return MimeJPEG
	}
	return contentType
}

func FormatFromContentType(contentType string) ImageFormat {
	switch NormalizeContentType(contentType) {
	case MimeJPEG:
		return FormatJPEG
	case MimePNG:
		return FormatPNG
	case MimeWebP:
		return FormatWebP
	case MimeAVIF:
		return FormatAVIF
	case "image/gif":
		return FormatGIF
	case "image/bmp", "image/x-ms-bmp":
		return FormatBMP
	case "image/tiff":
		return FormatTIFF
	default:
		return ""
	}
}

func (f ImageFormat) ContentType() string {
	switch f {
	case FormatJPEG:
		return MimeJPEG
	case FormatPNG:
		return MimePNG
	case FormatWebP:
		return MimeWebP
	case FormatAVIF:
		return MimeAVIF
	case "":
		return "application/octet-stream"
	default:
		return "image/" + string(f)
	}
}

func (f ImageFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case "":
		return ""
	default:
		return "." + string(f)
	}
}
