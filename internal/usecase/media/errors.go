package media

import "errors"

var (
	ErrInvalidKind       = errors.New("invalid photo kind")
	ErrUnsupportedType   = errors.New("unsupported content type")
	ErrFileTooLarge      = errors.New("file too large")
	ErrForeignObjectKey  = errors.New("object key does not belong to this target")
	ErrObjectNotUploaded = errors.New("object was not uploaded")
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrInvalidOrder      = errors.New("order must list every photo of the kind exactly once")
	ErrCoverNotSupported = errors.New("only place photos can be the cover")
	ErrInvalidTarget     = errors.New("invalid upload target")
)
