package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"uploadpilot/internal/app"
	"uploadpilot/internal/content"
	"uploadpilot/internal/media"
	"uploadpilot/internal/publish"
	"uploadpilot/pkg/config"
)

const scheduleLayout = "2006-01-02 15:04"

var (
	uploadTopic       string
	uploadTitle       string
	uploadDescription string
	uploadSchedule    string
	uploadYes         bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file|dir|gs://bucket/path|s3://bucket/path>",
	Short: "Upload a video to YouTube",
	Long: `Upload a video to YouTube. Details are generated from --topic or taken from
--title and --description, then shown for editing before the upload starts.
A directory or a bucket prefix ending in "/" lists its videos to pick from.`,
	Example: `  uploadpilot upload cat.mp4 -t "funny cat video"
  uploadpilot upload ./videos/ -t "cooking" --schedule "2026-12-24 18:00"
  uploadpilot upload gs://my-bucket/clip.mp4 --title "Clip" --description "#shorts" -y`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadTopic, "topic", "t", "", "Generate title and description for this topic")
	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "Video title")
	uploadCmd.Flags().StringVar(&uploadDescription, "description", "", "Video description; #hashtags become tags")
	uploadCmd.Flags().StringVarP(&uploadSchedule, "schedule", "s", "", `Publish later, local time "2006-01-02 15:04" or RFC3339`)
	uploadCmd.Flags().BoolVarP(&uploadYes, "yes", "y", false, "Skip the review form")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	schedule, err := parseSchedule(uploadSchedule, time.Now(), cfg.Schedule.MinLead)
	if err != nil {
		return publish.NewError(publish.KindInputValidation, publish.PhaseValidate, err)
	}

	application, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = application.Media.Close() }()

	location, err := resolveLocation(ctx, application.Media, args[0])
	if err != nil {
		return err
	}

	meta := content.Metadata{Title: uploadTitle, Description: uploadDescription}
	if uploadTopic != "" && uploadTitle == "" {
		generated, err := generateWithSpinner(cmd, application.Generator, uploadTopic)
		if err != nil {
			return err
		}
		meta = *generated
	}

	if !uploadYes {
		confirmed, err := reviewMetadata(&meta, schedule)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(infoStyle.Render("Upload cancelled"))
			return nil
		}
	}

	payload, err := application.Media.Open(ctx, location)
	if err != nil {
		return publish.NewError(publish.KindInputValidation, publish.PhaseValidate, err)
	}
	defer func() { _ = payload.Close() }()

	fmt.Println(infoStyle.Render(fmt.Sprintf("%s (%s, %.1f MB)", payload.Name, payload.ContentType, float64(payload.Size)/(1<<20))))

	progress := make(chan publish.Phase)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for phase := range progress {
			if phase == publish.PhaseDone {
				continue
			}
			fmt.Println(infoStyle.Render("→ " + phase.Label() + "..."))
		}
	}()

	result, err := application.Orchestrator.Submit(ctx, publish.Submission{
		Payload:  payload,
		Metadata: meta,
		Schedule: schedule,
		Progress: progress,
	})
	<-done
	if err != nil {
		fmt.Println(errorStyle.Render("✗ " + err.Error()))
		return err
	}

	fmt.Println(successStyle.Render("✓ " + result.Message))
	fmt.Println(infoStyle.Render("  " + result.URL))
	return nil
}

// parseSchedule turns the --schedule flag into a Schedule. An empty value
// means publish now. The time must be at least minLead ahead of now.
func parseSchedule(value string, now time.Time, minLead time.Duration) (publish.Schedule, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return publish.Schedule{}, nil
	}

	at, err := time.Parse(time.RFC3339, value)
	if err != nil {
		at, err = time.ParseInLocation(scheduleLayout, value, time.Local)
	}
	if err != nil {
		return publish.Schedule{}, fmt.Errorf("invalid schedule time %q, want %q or RFC3339", value, scheduleLayout)
	}

	if !at.After(now) {
		return publish.Schedule{}, publish.ErrPublishTimeInPast
	}
	if at.Before(now.Add(minLead)) {
		return publish.Schedule{}, fmt.Errorf("publish time must be at least %s from now", minLead)
	}

	return publish.Schedule{Enabled: true, PublishAt: at}, nil
}

func resolveLocation(ctx context.Context, opener *media.Opener, location string) (string, error) {
	if !isListing(location) {
		return location, nil
	}

	videos, err := opener.List(ctx, location)
	if err != nil {
		return "", fmt.Errorf("failed to list videos: %w", err)
	}
	if len(videos) == 0 {
		return "", fmt.Errorf("no videos found in %s", location)
	}
	if len(videos) == 1 || uploadYes {
		return videos[0], nil
	}

	options := make([]huh.Option[string], len(videos))
	for i, v := range videos {
		options[i] = huh.NewOption(path.Base(v), v)
	}

	var choice string
	if err := huh.NewSelect[string]().
		Title("Select a video").
		Options(options...).
		Value(&choice).
		Run(); err != nil {
		return "", err
	}
	return choice, nil
}

func isListing(location string) bool {
	if strings.HasPrefix(location, "gs://") || strings.HasPrefix(location, "s3://") {
		return strings.HasSuffix(location, "/")
	}
	info, err := os.Stat(location)
	return err == nil && info.IsDir()
}

func reviewMetadata(meta *content.Metadata, schedule publish.Schedule) (bool, error) {
	confirm := true
	when := "Publish immediately"
	if schedule.Enabled {
		when = "Publish privately, release at " + schedule.PublishAt.Format("Jan 2, 2006 3:04 PM MST")
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&meta.Title).
				Validate(required("Title")),
			huh.NewText().
				Title("Description").
				Description("#hashtags become video tags").
				Lines(6).
				Value(&meta.Description),
			huh.NewConfirm().
				Title("Upload now?").
				Description(when).
				Value(&confirm),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirm, nil
}
