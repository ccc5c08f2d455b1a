package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ctpsstaff/gdrive-mirror/internal/drive"
	"github.com/ctpsstaff/gdrive-mirror/internal/mirror"
)

const localRootPerms = 0o755

func newMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror <local-root>",
		Short: "Mirror the Drive folder tree into a new local directory",
		Long: `Mirror the full Drive folder tree into <local-root>, which must not
already exist. Google-native documents are exported to office formats
(falling back to PDF); everything else is downloaded as-is. Forms are
skipped with a notice. The walk is sequential and one-shot: there is no
resume, a failed run leaves what it already wrote.`,
		Args: cobra.ExactArgs(1),
		RunE: runMirror,
	}

	cmd.Flags().String("folder", "", "Drive folder ID to mirror (defaults to mirror.root_folder_id, normally the Drive root)")

	return cmd
}

func runMirror(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	localRoot := args[0]
	fs := afero.NewOsFs()

	// The root is created by this run; an existing directory means a
	// previous mirror that we must not merge into.
	if _, err := fs.Stat(localRoot); err == nil {
		return fmt.Errorf("local root %s already exists", localRoot)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking local root: %w", err)
	}

	folderID := resolvedCfg.RootFolderID
	if cmd.Flags().Changed("folder") {
		folderID, _ = cmd.Flags().GetString("folder")
	}

	ctx := cmd.Context()

	src, err := drive.TokenSourceFromPath(ctx, driveCredentials(), logger)
	if err != nil {
		return err
	}

	// No client timeout: downloads can legitimately take a long time and
	// the walk is strictly sequential anyway.
	client := drive.NewClient(drive.DefaultBaseURL, &http.Client{}, src, logger)

	if err := fs.MkdirAll(localRoot, localRootPerms); err != nil {
		return fmt.Errorf("creating local root: %w", err)
	}

	statusf("Mirroring Drive folder %s into %s ...\n", folderID, localRoot)

	walker := mirror.NewWalker(fs, client, os.Stdout, logger)
	if err := walker.Walk(ctx, localRoot, folderID); err != nil {
		return err
	}

	statusf("Done.\n")

	return nil
}
