package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDecode            = errors.New("image decode failed")
	ErrEncode            = errors.New("image encode failed")
	ErrPresign           = errors.New("presign failed")
	ErrUploadTransport   = errors.New("upload transfer failed")
	ErrConfirm           = errors.New("confirm failed")
	ErrListFetch         = errors.New("photo list fetch failed")
	ErrMutation          = errors.New("photo list mutation failed")
	ErrUnsupportedMedia  = errors.New("unsupported media type")
	ErrInvalidTarget     = errors.New("invalid upload target")
	ErrCoverNotSupported = errors.New("cover is only supported for place photos")
	ErrPresignExpired    = errors.New("presigned upload expired")
	ErrItemNotFound      = errors.New("pending item not found")
	ErrQueueClosed       = errors.New("upload queue is closed")
)

// FileError names the file a stage failed on.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// UserMessage renders err for people. Transport details, URLs and object keys are never included.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var fileErr *FileError
	name := ""
	if errors.As(err, &fileErr) {
		name = fileErr.File
	}

	switch {
	case errors.Is(err, ErrDecode):
		if name != "" {
			return fmt.Sprintf("Could not read image %q", name)
		}
		return "Could not read image"
	case errors.Is(err, ErrEncode):
		if name != "" {
			return fmt.Sprintf("Could not process image %q", name)
		}
		return "Could not process image"
	case errors.Is(err, ErrUnsupportedMedia):
		if name != "" {
			return fmt.Sprintf("%q is not a supported image", name)
		}
		return "File is not a supported image"
	case errors.Is(err, ErrPresign), errors.Is(err, ErrUploadTransport), errors.Is(err, ErrConfirm), errors.Is(err, ErrPresignExpired):
		return "Upload failed, please try again"
	case errors.Is(err, ErrListFetch):
		return "Could not load photos"
	case errors.Is(err, ErrCoverNotSupported):
		return "Menu photos cannot be set as cover"
	case errors.Is(err, ErrMutation):
		return "Could not update photos"
	default:
		return "Something went wrong"
	}
}
