package cli

import (
	"fmt"
	"net/http"
	"strings"

	"cafe-media/internal/client/cafeapi"
	"cafe-media/internal/client/objectstore"
	"cafe-media/internal/config"
	"cafe-media/internal/domain"
	"cafe-media/internal/usecase/gallery"
	"cafe-media/internal/usecase/processor/operations"
	"cafe-media/internal/usecase/upload"

	"github.com/wb-go/wbf/zlog"
)

type clientDeps struct {
	gallery *gallery.Service
	upload  *upload.Service
}

func newClientDeps(cfg *config.Config, logger *zlog.Zerolog) *clientDeps {
	httpClient := &http.Client{Timeout: cfg.API.Timeout}

	api := cafeapi.New(cfg.API.BaseURL, cfg.API.Token, httpClient, logger)
	cache := gallery.NewCache(api, cfg.Cache.TTL, logger)
	gallerySvc := gallery.NewService(api, cache, logger)

	uploadSvc := upload.NewService(
		operations.NewRotator(cfg.Upload.JPEGQuality),
		api,
		objectstore.NewUploader(httpClient, logger),
		gallerySvc,
		logger,
		cfg.Upload.Concurrency,
		cfg.UploadRetryStrategy(),
	)

	return &clientDeps{gallery: gallerySvc, upload: uploadSvc}
}

func parseKind(s string) (domain.PhotoKind, error) {
	kind := domain.PhotoKind(strings.ToLower(s))
	if !kind.Valid() {
		return "", fmt.Errorf("kind must be place or menu, got %q", s)
	}
	return kind, nil
}

// parseTarget maps the --to flag onto an upload target.
func parseTarget(scope, cafeID string) (domain.UploadTarget, error) {
	var target domain.UploadTarget
	switch strings.ToLower(scope) {
	case "place", "cafe":
		target = domain.CafePhotoTarget(cafeID)
	case "menu":
		target = domain.MenuPhotoTarget(cafeID)
	case "submission":
		target = domain.SubmissionTarget(cafeID)
	case "avatar":
		target = domain.AvatarTarget()
	default:
		return domain.UploadTarget{}, fmt.Errorf("unknown upload destination %q", scope)
	}

	if err := target.Validate(); err != nil {
		return domain.UploadTarget{}, err
	}
	return target, nil
}
