package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cafe-media/internal/domain"
	"cafe-media/internal/usecase/queue"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"
)

var errNothingToUpload = errors.New("no files to upload")

func newUploadCmd(logger *zlog.Zerolog) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload [flags] FILE...",
		Short: "Upload images to a cafe gallery, as a submission or as your avatar",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cafeID, _ := cmd.Flags().GetString("cafe")
			to, _ := cmd.Flags().GetString("to")
			rotations, err := cmd.Flags().GetStringToInt("rotate")
			if err != nil {
				return fmt.Errorf("failed to get rotate flag: %w", err)
			}

			target, err := parseTarget(to, cafeID)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			q := queue.NewDefault(cfg.Upload.PreviewDir, cfg.Upload.PreviewSize, cfg.Upload.MaxUploadSize, logger)
			defer q.Close()

			out := cmd.OutOrStdout()
			enqueue(out, q, args, rotations)
			if q.Len() == 0 {
				return errNothingToUpload
			}

			deps := newClientDeps(cfg, logger)
			result, err := deps.upload.Upload(cmd.Context(), target, q)
			if result == nil {
				return err
			}

			printResult(out, result)
			if err != nil {
				return fmt.Errorf("%d of %d uploads failed", result.Failed(), len(result.Items))
			}
			return nil
		},
	}

	cmd.Flags().String("cafe", "", "Cafe id (not needed for avatar uploads)")
	cmd.Flags().String("to", "place", "Destination: place, menu, submission or avatar")
	cmd.Flags().StringToInt("rotate", nil, "Clockwise quarter turns per file, e.g. --rotate IMG_1.jpg=1")

	return cmd
}

// enqueue skips unreadable or unsupported files and reports them.
func enqueue(out io.Writer, q *queue.Queue, paths []string, rotations map[string]int) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(out, "skip  %s: cannot read file\n", path)
			continue
		}

		name := filepath.Base(path)
		item, err := q.Add(&domain.File{Name: name, Data: data})
		if err != nil {
			fmt.Fprintf(out, "skip  %s\n", domain.UserMessage(err))
			continue
		}

		turns, ok := rotations[path]
		if !ok {
			turns, ok = rotations[name]
		}
		if ok {
			if _, err := q.Rotate(item.ID, turns); err != nil {
				fmt.Fprintf(out, "skip  rotation of %s\n", name)
			}
		}
	}
}

func printResult(out io.Writer, result *domain.BatchResult) {
	for _, item := range result.Items {
		switch {
		case !item.Succeeded():
			fmt.Fprintf(out, "fail  %s: %s\n", item.FileName, domain.UserMessage(item.Err))
		case item.Photo != nil:
			cover := ""
			if item.Photo.IsCover {
				cover = " cover"
			}
			fmt.Fprintf(out, "ok    %s -> %s #%d%s\n", item.FileName, item.Photo.Kind, item.Photo.Position, cover)
		case item.Submission != nil:
			fmt.Fprintf(out, "ok    %s -> submission %s\n", item.FileName, item.Submission.Status)
		default:
			fmt.Fprintf(out, "ok    %s -> avatar\n", item.FileName)
		}
	}
	fmt.Fprintln(out, result.Summary())
}
