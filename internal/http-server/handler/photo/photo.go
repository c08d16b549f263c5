package photo

import (
	"encoding/json"
	"errors"
	"net/http"

	"cafe-media/internal/domain"
	"cafe-media/internal/http-server/handler/photo/dto"
	media_uc "cafe-media/internal/usecase/media"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const maxBodySize = 1 << 20

type PhotoHandler struct {
	usecase  mediaUsecase
	validate *validator.Validate
	logger   *zlog.Zerolog
}

func NewPhotoHandler(usecase mediaUsecase, logger *zlog.Zerolog) *PhotoHandler {
	return &PhotoHandler{
		usecase:  usecase,
		validate: validator.New(),
		logger:   logger,
	}
}

// PresignCafePhoto serves both galleries; the body's kind picks place or menu.
func (h *PhotoHandler) PresignCafePhoto(w http.ResponseWriter, r *http.Request) {
	var req dto.PresignRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.presign(w, r, galleryTarget(chi.URLParam(r, "id"), req.Kind), req)
}

func (h *PhotoHandler) ConfirmCafePhoto(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.confirm(w, r, galleryTarget(chi.URLParam(r, "id"), req.Kind), req)
}

func (h *PhotoHandler) PresignSubmission(w http.ResponseWriter, r *http.Request) {
	var req dto.PresignRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.presign(w, r, domain.SubmissionTarget(chi.URLParam(r, "id")), req)
}

func (h *PhotoHandler) ConfirmSubmission(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.confirm(w, r, domain.SubmissionTarget(chi.URLParam(r, "id")), req)
}

func (h *PhotoHandler) PresignAvatar(w http.ResponseWriter, r *http.Request) {
	var req dto.PresignRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.presign(w, r, domain.AvatarTarget(), req)
}

func (h *PhotoHandler) ConfirmAvatar(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.confirm(w, r, domain.AvatarTarget(), req)
}

func (h *PhotoHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "id")
	kind := domain.PhotoKind(r.URL.Query().Get("kind"))

	photos, err := h.usecase.ListPhotos(r.Context(), cafeID, kind)
	if err != nil {
		h.handleError(w, err, cafeID)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.PhotosResponse{Photos: photos})
}

func (h *PhotoHandler) ReorderPhotos(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "id")
	kind := domain.PhotoKind(r.URL.Query().Get("kind"))
	if kind == "" {
		h.respondError(w, http.StatusBadRequest, ErrMissingKind.Error(), nil)
		return
	}

	var req dto.ReorderRequest
	if !h.decode(w, r, &req) {
		return
	}

	photos, err := h.usecase.Reorder(r.Context(), cafeID, kind, req.PhotoIDs)
	if err != nil {
		h.handleError(w, err, cafeID)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.PhotosResponse{Photos: photos})
}

func (h *PhotoHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "id")

	photos, err := h.usecase.SetCover(r.Context(), cafeID, chi.URLParam(r, "photoId"))
	if err != nil {
		h.handleError(w, err, cafeID)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.PhotosResponse{Photos: photos})
}

func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "id")

	photos, err := h.usecase.DeletePhoto(r.Context(), cafeID, chi.URLParam(r, "photoId"))
	if err != nil {
		h.handleError(w, err, cafeID)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.PhotosResponse{Photos: photos})
}

func (h *PhotoHandler) presign(w http.ResponseWriter, r *http.Request, target domain.UploadTarget, req dto.PresignRequest) {
	presigned, err := h.usecase.Presign(r.Context(), target, req.ContentType, req.SizeBytes)
	if err != nil {
		h.handleError(w, err, target.CafeID)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.PresignResponse{
		UploadURL: presigned.UploadURL,
		Method:    presigned.Method,
		Headers:   presigned.Headers,
		ObjectKey: presigned.ObjectKey,
		FileURL:   presigned.FileURL,
		ExpiresAt: presigned.ExpiresAt,
	})
}

func (h *PhotoHandler) confirm(w http.ResponseWriter, r *http.Request, target domain.UploadTarget, req dto.ConfirmRequest) {
	meta := domain.ConfirmMetadata{Kind: req.Kind}
	if req.IsCover != nil {
		meta.IsCover = *req.IsCover
	}
	if req.Position != nil {
		meta.Position = *req.Position
	}

	result, err := h.usecase.Confirm(r.Context(), target, req.ObjectKey, meta)
	if err != nil {
		h.handleError(w, err, target.CafeID)
		return
	}

	switch {
	case result.Photo != nil:
		h.respondJSON(w, http.StatusCreated, result.Photo)
	case result.Submission != nil:
		h.respondJSON(w, http.StatusCreated, result.Submission)
	default:
		h.respondJSON(w, http.StatusOK, result.Avatar)
	}
}

func (h *PhotoHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to decode request")
		h.respondError(w, http.StatusBadRequest, ErrInvalidBody.Error(), nil)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, ErrInvalidBody.Error(), err)
		return false
	}

	return true
}

func galleryTarget(cafeID string, kind domain.PhotoKind) domain.UploadTarget {
	if kind == domain.KindMenu {
		return domain.MenuPhotoTarget(cafeID)
	}
	return domain.CafePhotoTarget(cafeID)
}

func (h *PhotoHandler) handleError(w http.ResponseWriter, err error, cafeID string) {
	switch {
	case errors.Is(err, media_uc.ErrPhotoNotFound):
		h.respondError(w, http.StatusNotFound, "Photo not found", nil)
	case errors.Is(err, media_uc.ErrUnsupportedType):
		h.respondError(w, http.StatusUnsupportedMediaType, "Unsupported image type", nil)
	case errors.Is(err, media_uc.ErrFileTooLarge):
		h.respondError(w, http.StatusRequestEntityTooLarge, "File too large", nil)
	case errors.Is(err, media_uc.ErrObjectNotUploaded):
		h.respondError(w, http.StatusConflict, "Object has not been uploaded", nil)
	case errors.Is(err, media_uc.ErrCoverNotSupported):
		h.respondError(w, http.StatusBadRequest, "Only place photos can be the cover", nil)
	case errors.Is(err, media_uc.ErrInvalidTarget),
		errors.Is(err, media_uc.ErrInvalidKind),
		errors.Is(err, media_uc.ErrInvalidOrder),
		errors.Is(err, media_uc.ErrForeignObjectKey):
		h.logger.Warn().Err(err).Str("cafe_id", cafeID).Msg("Rejected photo request")
		h.respondError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		h.logger.Error().Err(err).Str("cafe_id", cafeID).Msg("Photo request failed")
		h.respondError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func (h *PhotoHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *PhotoHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	response := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}

	if err != nil {
		response.Details = err.Error()
	}

	h.respondJSON(w, status, response)
}
