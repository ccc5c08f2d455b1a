package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ctpsstaff/gdrive-mirror/internal/drive"
)

// Service is the remote store surface the walker consumes. Defined at the
// consumer; *drive.Client is the real implementation.
type Service interface {
	ListChildren(ctx context.Context, folderID string) ([]drive.File, error)
	FilesByTitle(ctx context.Context, title string) ([]drive.File, error)
	Download(ctx context.Context, f drive.File, mimeType string, w io.Writer) (int64, error)
}

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Walker mirrors a remote folder tree onto a local directory tree with a
// strictly sequential depth-first walk. It holds no state between calls
// beyond the call stack; a failed run leaves whatever it already wrote.
type Walker struct {
	fs      afero.Fs
	svc     Service
	notices io.Writer
	logger  *slog.Logger
}

// NewWalker creates a Walker writing through fs. Diagnostic notices about
// skipped and failed entries are written to notices as human-readable
// lines, separate from the structured log.
func NewWalker(fs afero.Fs, svc Service, notices io.Writer, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}

	if notices == nil {
		notices = os.Stdout
	}

	return &Walker{
		fs:      fs,
		svc:     svc,
		notices: notices,
		logger:  logger,
	}
}

// Walk mirrors the contents of the remote folder folderID into localDir,
// which must already exist. Folders recurse depth-first before remaining
// siblings are processed. A failed file download is reported and skipped;
// a failed listing or directory creation aborts the whole walk.
//
// Each title from the parent listing is re-queried by exact title because
// titles are not unique: every match is processed with a per-title
// disambiguation counter that feeds the local file name.
func (w *Walker) Walk(ctx context.Context, localDir, folderID string) error {
	entries, err := w.svc.ListChildren(ctx, folderID)
	if err != nil {
		return fmt.Errorf("mirror: listing folder %s: %w", folderID, err)
	}

	for _, entry := range entries {
		w.logger.Debug("processing entry",
			slog.String("title", entry.Title),
			slog.String("id", entry.ID),
		)

		matches, err := w.svc.FilesByTitle(ctx, entry.Title)
		if err != nil {
			return fmt.Errorf("mirror: listing files titled %q: %w", entry.Title, err)
		}

		for i, f := range matches {
			switch {
			case f.IsFolder():
				if err := w.enterFolder(ctx, localDir, f); err != nil {
					return err
				}
			case f.IsForm():
				fmt.Fprintf(w.notices, "*** Google Drive does not support export/download of Google Forms: %s (id %s)\n",
					f.Title, f.ID)
				w.logger.Info("skipping form",
					slog.String("title", f.Title),
					slog.String("id", f.ID),
				)
			default:
				w.downloadFile(ctx, localDir, entry.Title, f, i)
			}
		}
	}

	return nil
}

// enterFolder creates the local subdirectory for a remote folder and
// recurses into it. Mkdir has no merge semantics: an existing directory
// (two folders sanitizing to the same name) is fatal.
func (w *Walker) enterFolder(ctx context.Context, localDir string, f drive.File) error {
	subdir := filepath.Join(localDir, SanitizeName(f.Title))

	if err := w.fs.Mkdir(subdir, dirPerms); err != nil {
		return fmt.Errorf("mirror: creating directory for folder %s (id %s): %w", f.Title, f.ID, err)
	}

	w.logger.Info("descending into folder",
		slog.String("title", f.Title),
		slog.String("id", f.ID),
		slog.String("local_dir", subdir),
	)

	return w.Walk(ctx, subdir, f.ID)
}

// downloadFile resolves the export format, builds the local path, and
// streams the content into it. Any failure is reported as a notice and the
// walk continues; one bad file never aborts the traversal. No cleanup of
// partial files on failure.
func (w *Walker) downloadFile(ctx context.Context, localDir, title string, f drive.File, i int) {
	spec := ResolveExport(f)
	localPath := BuildLocalPath(localDir, title, spec.Suffix, i)

	if err := w.fetchToFile(ctx, f, spec.MimeType, localPath); err != nil {
		fmt.Fprintf(w.notices, "*** FAILED to download %s (id %s) to %s: %v\n",
			f.Title, f.ID, localPath, err)
		w.logger.Warn("download failed",
			slog.String("title", f.Title),
			slog.String("id", f.ID),
			slog.String("local_path", localPath),
			slog.String("kind", failureKind(err)),
			slog.String("error", err.Error()),
		)

		return
	}

	w.logger.Info("downloaded file",
		slog.String("title", f.Title),
		slog.String("id", f.ID),
		slog.String("local_path", localPath),
		slog.String("mime_type", spec.MimeType),
	)
}

func (w *Walker) fetchToFile(ctx context.Context, f drive.File, mimeType, localPath string) error {
	out, err := w.fs.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerms)
	if err != nil {
		return fmt.Errorf("mirror: creating %s: %w", localPath, err)
	}
	defer out.Close()

	if _, err := w.svc.Download(ctx, f, mimeType, out); err != nil {
		return err
	}

	return nil
}

// failureKind classifies a download failure for the structured log, so
// per-file failures are inspectable without parsing error strings.
func failureKind(err error) string {
	switch {
	case errors.Is(err, drive.ErrNoContent):
		return "no_content"
	case errors.Is(err, drive.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, drive.ErrForbidden):
		return "forbidden"
	case errors.Is(err, drive.ErrNotFound):
		return "not_found"
	case errors.Is(err, drive.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, drive.ErrServerError):
		return "server_error"
	default:
		return "other"
	}
}
