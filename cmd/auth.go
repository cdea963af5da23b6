package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"uploadpilot/internal/auth"
	"uploadpilot/pkg/config"
)

var (
	authInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	authSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	authErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with external services",
	Long:  `Authenticate with YouTube using credentials from .env`,
}

var authYouTubeCmd = &cobra.Command{
	Use:   "youtube",
	Short: "Authenticate with YouTube (OAuth)",
	Long: `Complete the YouTube OAuth flow using GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.
The resulting refresh token is stored in the token file and used for uploads.`,
	RunE: runAuthYouTube,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check authentication status for all services",
	Long:  `Verify which services are configured and authenticated.`,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authYouTubeCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(authInfoStyle.Render("\nService Authentication Status:\n"))

	switch {
	case cfg.YouTube.TokenSource == config.TokenSourceRemote:
		fmt.Println(authInfoStyle.Render("○ YouTube: tokens fetched from " + cfg.YouTube.TokenEndpoint))
	case !cfg.HasOAuthClient():
		fmt.Println(authErrorStyle.Render("✗ YouTube: missing GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET"))
	case cfg.GoogleRefreshToken != "":
		fmt.Println(authSuccessStyle.Render("✓ YouTube: refresh token configured (GOOGLE_REFRESH_TOKEN)"))
	default:
		if _, err := os.Stat(cfg.YouTubeTokenPath); err == nil {
			fmt.Println(authSuccessStyle.Render("✓ YouTube: authenticated (token exists)"))
		} else {
			fmt.Println(authErrorStyle.Render("✗ YouTube: credentials set, but not authenticated"))
			fmt.Println(authInfoStyle.Render("  Run: uploadpilot auth youtube"))
		}
	}

	switch cfg.Generator.Provider {
	case config.ProviderGemini:
		printKeyStatus("Gemini", "GEMINI_API_KEY", cfg.GeminiAPIKey != "")
	case config.ProviderGroq:
		printKeyStatus("Groq", "GROQ_API_KEY", cfg.GroqAPIKey != "")
	case config.ProviderRemote:
		fmt.Println(authInfoStyle.Render("○ Generator: remote endpoint " + cfg.Generator.Endpoint))
	}

	if cfg.GCPProject != "" {
		fmt.Println(authSuccessStyle.Render("✓ Google Cloud: project " + cfg.GCPProject))
	} else {
		fmt.Println(authInfoStyle.Render("○ Google Cloud: not configured (optional)"))
	}

	fmt.Println()
	return nil
}

func printKeyStatus(service, env string, ok bool) {
	if ok {
		fmt.Println(authSuccessStyle.Render(fmt.Sprintf("✓ %s: API key configured", service)))
		return
	}
	fmt.Println(authErrorStyle.Render(fmt.Sprintf("✗ %s: missing %s", service, env)))
}

func runAuthYouTube(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOAuthClient() {
		return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set in .env")
	}

	authorizer := &auth.Authorizer{
		Config:    auth.OAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.YouTube.RedirectURL),
		TokenPath: cfg.YouTubeTokenPath,
		Prompt: func(authURL string) {
			fmt.Println(authInfoStyle.Render("\nOpening browser for YouTube authentication..."))
			fmt.Println(authInfoStyle.Render("If browser doesn't open, visit:\n" + authURL))
			fmt.Println(authInfoStyle.Render("\nWaiting for authentication..."))
		},
	}

	if _, err := authorizer.Authorize(ctx); err != nil {
		return err
	}

	fmt.Println(authSuccessStyle.Render("✓ YouTube authentication complete"))
	fmt.Println(authSuccessStyle.Render("  Token saved to: " + cfg.YouTubeTokenPath))
	return nil
}
