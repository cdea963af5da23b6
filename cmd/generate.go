package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"uploadpilot/internal/app"
	"uploadpilot/internal/content"
	"uploadpilot/internal/publish"
	"uploadpilot/pkg/config"
	"uploadpilot/pkg/httputil"
)

var (
	generateTopic string
	generateJSON  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a title and description for a topic",
	Long:  `Ask the configured generator for a catchy title and a description with 3-5 hashtags.`,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "What the video is about")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := content.ValidateTopic(generateTopic); err != nil {
		return publish.NewError(publish.KindInputValidation, publish.PhaseGenerate, err)
	}

	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	generator, err := app.BuildGenerator(ctx, cfg, httputil.NewClient(cfg.Generator.Timeout))
	if err != nil {
		return err
	}

	meta, err := generateWithSpinner(cmd, generator, generateTopic)
	if err != nil {
		return err
	}

	if generateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}

	printMetadata(meta)
	return nil
}

func generateWithSpinner(cmd *cobra.Command, generator content.Generator, topic string) (*content.Metadata, error) {
	var meta *content.Metadata
	var genErr error

	err := spinner.New().
		Title(publish.PhaseGenerate.Label() + "...").
		Context(cmd.Context()).
		Action(func() { meta, genErr = generator.Generate(cmd.Context(), topic) }).
		Run()
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		kind := publish.KindGeneration
		if errors.Is(genErr, content.ErrInvalidInput) {
			kind = publish.KindInputValidation
		}
		return nil, publish.NewError(kind, publish.PhaseGenerate, genErr)
	}
	return meta, nil
}

func printMetadata(meta *content.Metadata) {
	fmt.Println(titleStyle.Render(meta.Title))
	fmt.Println(meta.Description)
	if tags := publish.ExtractTags(meta.Description); len(tags) > 0 {
		fmt.Println(infoStyle.Render(fmt.Sprintf("\nTags: %v", tags)))
	}
}
