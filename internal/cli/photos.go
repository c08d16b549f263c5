package cli

import (
	"fmt"
	"io"

	"cafe-media/internal/domain"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

func newPhotosCmd(logger *zlog.Zerolog) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "List and edit a cafe's galleries",
	}

	cmd.PersistentFlags().String("cafe", "", "Cafe id")
	cmd.PersistentFlags().String("kind", "place", "Gallery: place or menu")
	_ = cmd.MarkPersistentFlagRequired("cafe")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the gallery in display order",
			Args:  cobra.NoArgs,
			RunE: galleryCmd(logger, func(cmd *cobra.Command, deps *clientDeps, cafeID string, kind domain.PhotoKind, _ []string) ([]domain.PhotoRecord, error) {
				return deps.gallery.List(cmd.Context(), cafeID, kind)
			}),
		},
		&cobra.Command{
			Use:   "reorder PHOTO_ID...",
			Short: "Set the display order; every photo of the kind must be listed",
			Args:  cobra.MinimumNArgs(1),
			RunE: galleryCmd(logger, func(cmd *cobra.Command, deps *clientDeps, cafeID string, kind domain.PhotoKind, args []string) ([]domain.PhotoRecord, error) {
				return deps.gallery.Reorder(cmd.Context(), cafeID, args, kind)
			}),
		},
		&cobra.Command{
			Use:   "cover PHOTO_ID",
			Short: "Make a place photo the cafe's cover",
			Args:  cobra.ExactArgs(1),
			RunE: galleryCmd(logger, func(cmd *cobra.Command, deps *clientDeps, cafeID string, kind domain.PhotoKind, args []string) ([]domain.PhotoRecord, error) {
				return deps.gallery.SetCover(cmd.Context(), cafeID, args[0], kind)
			}),
		},
		&cobra.Command{
			Use:   "delete PHOTO_ID",
			Short: "Delete a photo",
			Args:  cobra.ExactArgs(1),
			RunE: galleryCmd(logger, func(cmd *cobra.Command, deps *clientDeps, cafeID string, kind domain.PhotoKind, args []string) ([]domain.PhotoRecord, error) {
				return deps.gallery.Delete(cmd.Context(), cafeID, args[0], kind)
			}),
		},
	)

	return cmd
}

type galleryAction func(cmd *cobra.Command, deps *clientDeps, cafeID string, kind domain.PhotoKind, args []string) ([]domain.PhotoRecord, error)

// galleryCmd runs action and prints the gallery it returns.
func galleryCmd(logger *zlog.Zerolog, action galleryAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cafeID, _ := cmd.Flags().GetString("cafe")
		kindFlag, _ := cmd.Flags().GetString("kind")

		kind, err := parseKind(kindFlag)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		photos, err := action(cmd, newClientDeps(cfg, logger), cafeID, kind, args)
		if err != nil {
			return fmt.Errorf("%s: %w", domain.UserMessage(err), err)
		}

		printPhotos(cmd.OutOrStdout(), photos)
		return nil
	}
}

func printPhotos(out io.Writer, photos []domain.PhotoRecord) {
	if len(photos) == 0 {
		fmt.Fprintln(out, "no photos")
		return
	}
	for _, p := range photos {
		cover := ""
		if p.IsCover {
			cover = "  cover"
		}
		fmt.Fprintf(out, "%2d  %s  %s%s\n", p.Position, p.ID, p.URL, cover)
	}
}
