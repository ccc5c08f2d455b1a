package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctpsstaff/gdrive-mirror/internal/drive"
)

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [folder-id]",
		Short: "List the direct children of a Drive folder",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLs,
	}
}

func runLs(cmd *cobra.Command, args []string) error {
	logger := buildLogger()

	folderID := resolvedCfg.RootFolderID
	if len(args) == 1 {
		folderID = args[0]
	}

	ctx := cmd.Context()

	src, err := drive.TokenSourceFromPath(ctx, driveCredentials(), logger)
	if err != nil {
		return err
	}

	client := drive.NewClient(drive.DefaultBaseURL, &http.Client{}, src, logger)

	files, err := client.ListChildren(ctx, folderID)
	if err != nil {
		return err
	}

	for _, f := range files {
		fmt.Fprintf(os.Stdout, "%-6s  %-44s  %s\n", fileKind(f), f.ID, f.Title)
	}

	return nil
}

func fileKind(f drive.File) string {
	switch {
	case f.IsFolder():
		return "folder"
	case f.IsForm():
		return "form"
	default:
		return "file"
	}
}
