package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"uploadpilot/internal/app"
	"uploadpilot/internal/youtube"
	"uploadpilot/pkg/config"
	"uploadpilot/pkg/httputil"
)

var statusCmd = &cobra.Command{
	Use:   "status <video-id>",
	Short: "Show processing and privacy status of an uploaded video",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var privacyCmd = &cobra.Command{
	Use:       "privacy <video-id> <public|unlisted|private>",
	Short:     "Change the privacy of an uploaded video",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"public", "unlisted", "private"},
	RunE:      runPrivacy,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(privacyCmd)
}

func newYouTubeClient(cmd *cobra.Command) (*youtube.Client, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	tokens, err := app.BuildTokenProvider(cfg, httputil.NewClient(cfg.Generator.Timeout))
	if err != nil {
		return nil, err
	}
	return youtube.NewClient(ctx, tokens)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newYouTubeClient(cmd)
	if err != nil {
		return err
	}

	status, err := client.Status(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(status.Title))
	fmt.Printf("Upload:  %s\n", status.UploadStatus)
	fmt.Printf("Privacy: %s\n", status.PrivacyStatus)
	if status.Scheduled() {
		fmt.Println(infoStyle.Render("Scheduled for " + status.PublishAt))
	}
	if status.FailureReason != "" {
		fmt.Println(errorStyle.Render("Failure: " + status.FailureReason))
	}
	if status.RejectionReason != "" {
		fmt.Println(errorStyle.Render("Rejected: " + status.RejectionReason))
	}
	return nil
}

func runPrivacy(cmd *cobra.Command, args []string) error {
	client, err := newYouTubeClient(cmd)
	if err != nil {
		return err
	}

	if err := client.SetPrivacy(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Video %s is now %s", args[0], args[1])))
	return nil
}
