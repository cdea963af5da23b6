// Package publish drives a single video submission: it validates the
// request, fetches a token, derives the platform metadata and runs the
// resumable upload.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"uploadpilot/internal/auth"
	"uploadpilot/internal/content"
	"uploadpilot/internal/media"
	"uploadpilot/internal/upload"
)

const watchURLFormat = "https://youtube.com/watch?v=%s"

type Submission struct {
	Payload  *media.Payload
	Metadata content.Metadata
	Schedule Schedule
	// Progress, when set, receives each phase before its network call and
	// is closed when Submit returns.
	Progress chan<- Phase
}

type Result struct {
	SubmissionID string
	VideoID      string
	URL          string
	Scheduled    bool
	PublishAt    time.Time
	Message      string
}

type Options struct {
	HTTPClient *http.Client
	UploadURL  string
	CategoryID string
	Clock      func() time.Time
}

// Orchestrator accepts one submission at a time. A concurrent Submit is
// rejected with ErrBusy rather than queued.
type Orchestrator struct {
	tokens     auth.TokenProvider
	httpClient *http.Client
	uploadURL  string
	categoryID string
	now        func() time.Time

	inFlight atomic.Bool
}

func NewOrchestrator(tokens auth.TokenProvider, opts Options) *Orchestrator {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		tokens:     tokens,
		httpClient: opts.HTTPClient,
		uploadURL:  opts.UploadURL,
		categoryID: opts.CategoryID,
		now:        now,
	}
}

func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if sub.Progress != nil {
		defer close(sub.Progress)
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer o.inFlight.Store(false)

	id := uuid.NewString()
	logger := slog.With("submission", id)

	if err := o.validate(sub); err != nil {
		logger.Debug("Submission rejected", "error", err)
		return nil, NewError(KindInputValidation, PhaseValidate, err)
	}

	notify(ctx, sub.Progress, PhaseToken)
	token, err := o.tokens.AccessToken(ctx)
	if err != nil {
		logger.Error("Token acquisition failed", "error", err)
		return nil, NewError(KindUpstreamAuth, PhaseToken, err)
	}

	meta := BuildMetadata(sub.Metadata.Title, sub.Metadata.Description, sub.Schedule)
	meta.CategoryID = o.categoryID
	logger.Info("Uploading video",
		"file", sub.Payload.Name,
		"size", sub.Payload.Size,
		"privacy", meta.PrivacyStatus,
		"tags", len(meta.Tags),
	)

	session := upload.NewSession(o.httpClient, o.uploadURL)

	notify(ctx, sub.Progress, PhaseInitiate)
	err = session.Initiate(ctx, token, meta.Video(), upload.MediaInfo{
		Size:        sub.Payload.Size,
		ContentType: sub.Payload.ContentType,
	})
	if err != nil {
		logger.Error("Upload initiation failed", "error", err)
		return nil, NewError(KindProtocol, PhaseInitiate, err)
	}
	logger.Debug("Upload session established", "state", session.State())

	notify(ctx, sub.Progress, PhaseTransfer)
	videoID, err := session.Transfer(ctx, sub.Payload, sub.Payload.Size, sub.Payload.ContentType)
	if err != nil {
		logger.Error("Video transfer failed", "error", err)
		return nil, NewError(classifyTransfer(err), PhaseTransfer, err)
	}

	result := &Result{
		SubmissionID: id,
		VideoID:      videoID,
		URL:          fmt.Sprintf(watchURLFormat, videoID),
		Scheduled:    sub.Schedule.Enabled,
	}
	if sub.Schedule.Enabled {
		result.PublishAt = sub.Schedule.PublishAt
		result.Message = "Video scheduled for " + sub.Schedule.PublishAt.Local().Format("Jan 2, 2006 3:04 PM MST")
	} else {
		result.Message = "Video uploaded with ID: " + videoID
	}

	logger.Info("Upload complete", "video_id", videoID, "scheduled", result.Scheduled)
	notify(ctx, sub.Progress, PhaseDone)
	return result, nil
}

func (o *Orchestrator) validate(sub Submission) error {
	if sub.Payload == nil {
		return ErrNoFile
	}
	if strings.TrimSpace(sub.Metadata.Title) == "" {
		return ErrNoTitle
	}
	if sub.Schedule.Enabled {
		if sub.Schedule.PublishAt.IsZero() {
			return ErrNoPublishTime
		}
		if !sub.Schedule.PublishAt.After(o.now()) {
			return ErrPublishTimeInPast
		}
	}
	return nil
}

// classifyTransfer separates a rejected transfer from an unusable success
// response, which is a protocol failure.
func classifyTransfer(err error) Kind {
	var protoErr *upload.ProtocolError
	if errors.As(err, &protoErr) {
		return KindProtocol
	}
	return KindTransfer
}

func notify(ctx context.Context, ch chan<- Phase, p Phase) {
	if ch == nil {
		return
	}
	select {
	case ch <- p:
	case <-ctx.Done():
	}
}
