package main

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ctpsstaff/gdrive-mirror/internal/drive"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize gdrive-mirror to read your Drive",
		Long: `Authorize gdrive-mirror to read your Google Drive via the browser.

A local webserver receives the OAuth2 callback; the resulting token is
saved for later runs. Requires auth.client_id and auth.client_secret in
the config file or the GDRIVE_MIRROR_CLIENT_ID/_CLIENT_SECRET environment
variables.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved Drive token",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}
}

// driveCredentials assembles the OAuth credentials from the resolved config.
func driveCredentials() drive.Credentials {
	return drive.Credentials{
		ClientID:     resolvedCfg.ClientID,
		ClientSecret: resolvedCfg.ClientSecret,
		TokenPath:    resolvedCfg.TokenPath,
	}
}

func runLogin(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()

	_, err := drive.Login(cmd.Context(), driveCredentials(), openBrowser, logger)
	if err != nil {
		return err
	}

	statusf("Logged in. Token saved to %s\n", resolvedCfg.TokenPath)

	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	if err := drive.Logout(resolvedCfg.TokenPath, logger); err != nil {
		return err
	}

	statusf("Logged out.\n")

	return nil
}

// openBrowser launches the platform's default browser at the given URL.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	default:
		return fmt.Errorf("don't know how to open a browser on %s", runtime.GOOS)
	}
}
