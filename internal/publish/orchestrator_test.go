package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"uploadpilot/internal/auth"
	"uploadpilot/internal/content"
	"uploadpilot/internal/media"
	"uploadpilot/internal/upload"
)

var fixedNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeTokens struct {
	token   string
	err     error
	calls   int32
	release chan struct{}
	entered chan struct{}
}

func (f *fakeTokens) AccessToken(ctx context.Context) (auth.AccessToken, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return auth.AccessToken{}, f.err
	}
	return auth.AccessToken{Value: f.token}, nil
}

type platform struct {
	omitLocation   bool
	initStatus     int
	initBody       string
	transferStatus int
	transferBody   string

	mu            sync.Mutex
	initCalls     int
	transferCalls int
	lastStatus    map[string]any
	lastTags      []any
}

func newPlatform() *platform {
	return &platform{
		initStatus:     http.StatusOK,
		transferStatus: http.StatusOK,
		transferBody:   `{"id":"vid123"}`,
	}
}

func (p *platform) start(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()

		switch r.Method {
		case http.MethodPost:
			p.initCalls++
			var video struct {
				Snippet map[string]any `json:"snippet"`
				Status  map[string]any `json:"status"`
			}
			_ = json.NewDecoder(r.Body).Decode(&video)
			p.lastStatus = video.Status
			p.lastTags, _ = video.Snippet["tags"].([]any)
			if !p.omitLocation {
				w.Header().Set("Location", server.URL+"/session")
			}
			w.WriteHeader(p.initStatus)
			_, _ = w.Write([]byte(p.initBody))
		case http.MethodPut:
			p.transferCalls++
			_, _ = io.Copy(io.Discard, r.Body)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(p.transferStatus)
			_, _ = w.Write([]byte(p.transferBody))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func (p *platform) calls() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initCalls, p.transferCalls
}

func newTestOrchestrator(tokens auth.TokenProvider, server *httptest.Server) *Orchestrator {
	opts := Options{Clock: func() time.Time { return fixedNow }}
	if server != nil {
		opts.HTTPClient = server.Client()
		opts.UploadURL = server.URL + "/upload"
	}
	return NewOrchestrator(tokens, opts)
}

func testPayload() *media.Payload {
	body := "fake video data"
	return media.NewPayload("clip.mp4", "video/mp4", int64(len(body)), io.NopCloser(strings.NewReader(body)))
}

func testMetadata() content.Metadata {
	return content.Metadata{
		Title:       "You WON'T BELIEVE This Cat!",
		Description: "So funny. #cats #viral #shorts",
	}
}

func TestSubmitNoFileMakesNoCalls(t *testing.T) {
	tokens := &fakeTokens{token: "t"}
	p := newPlatform()
	server := p.start(t)

	_, err := newTestOrchestrator(tokens, server).Submit(context.Background(), Submission{
		Metadata: testMetadata(),
	})

	if !errors.Is(err, ErrNoFile) {
		t.Errorf("Submit() error = %v, want ErrNoFile", err)
	}
	if KindOf(err) != KindInputValidation {
		t.Errorf("KindOf() = %v, want input validation", KindOf(err))
	}
	if atomic.LoadInt32(&tokens.calls) != 0 {
		t.Error("token provider called")
	}
	if initCalls, transferCalls := p.calls(); initCalls+transferCalls != 0 {
		t.Errorf("platform calls = %d/%d, want none", initCalls, transferCalls)
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name     string
		meta     content.Metadata
		schedule Schedule
		wantErr  error
	}{
		{"noTitle", content.Metadata{Description: "d"}, Schedule{}, ErrNoTitle},
		{"blankTitle", content.Metadata{Title: "   "}, Schedule{}, ErrNoTitle},
		{"scheduleWithoutTime", testMetadata(), Schedule{Enabled: true}, ErrNoPublishTime},
		{"scheduleInPast", testMetadata(), Schedule{Enabled: true, PublishAt: fixedNow.Add(-time.Minute)}, ErrPublishTimeInPast},
		{"scheduleNow", testMetadata(), Schedule{Enabled: true, PublishAt: fixedNow}, ErrPublishTimeInPast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &fakeTokens{token: "t"}
			_, err := newTestOrchestrator(tokens, nil).Submit(context.Background(), Submission{
				Payload:  testPayload(),
				Metadata: tt.meta,
				Schedule: tt.schedule,
			})

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Submit() error = %v, want %v", err, tt.wantErr)
			}
			var pubErr *Error
			if !errors.As(err, &pubErr) || pubErr.Kind != KindInputValidation || pubErr.Phase != PhaseValidate {
				t.Errorf("Submit() error = %#v, want input validation in validate phase", err)
			}
			if atomic.LoadInt32(&tokens.calls) != 0 {
				t.Error("token provider called")
			}
		})
	}
}

func TestSubmitPublic(t *testing.T) {
	p := newPlatform()
	server := p.start(t)

	progress := make(chan Phase, 8)
	result, err := newTestOrchestrator(&fakeTokens{token: "t"}, server).Submit(context.Background(), Submission{
		Payload:  testPayload(),
		Metadata: testMetadata(),
		Progress: progress,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if result.VideoID != "vid123" || result.URL != "https://youtube.com/watch?v=vid123" {
		t.Errorf("result = %+v", result)
	}
	if result.Scheduled {
		t.Error("Scheduled = true")
	}
	if result.Message != "Video uploaded with ID: vid123" {
		t.Errorf("Message = %q", result.Message)
	}
	if result.SubmissionID == "" {
		t.Error("SubmissionID is empty")
	}

	var phases []Phase
	for phase := range progress {
		phases = append(phases, phase)
	}
	want := []Phase{PhaseToken, PhaseInitiate, PhaseTransfer, PhaseDone}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("phase[%d] = %s, want %s", i, phases[i], want[i])
		}
	}

	if p.lastStatus["privacyStatus"] != PrivacyPublic {
		t.Errorf("privacyStatus sent = %v", p.lastStatus["privacyStatus"])
	}
	if len(p.lastTags) != 3 || p.lastTags[0] != "cats" {
		t.Errorf("tags sent = %v", p.lastTags)
	}
}

func TestSubmitScheduled(t *testing.T) {
	p := newPlatform()
	server := p.start(t)
	publishAt := fixedNow.Add(24 * time.Hour)

	result, err := newTestOrchestrator(&fakeTokens{token: "t"}, server).Submit(context.Background(), Submission{
		Payload:  testPayload(),
		Metadata: testMetadata(),
		Schedule: Schedule{Enabled: true, PublishAt: publishAt},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if !result.Scheduled || !result.PublishAt.Equal(publishAt) {
		t.Errorf("result = %+v", result)
	}
	if !strings.HasPrefix(result.Message, "Video scheduled for ") {
		t.Errorf("Message = %q, want scheduled message", result.Message)
	}
	if strings.Contains(result.Message, "uploaded with ID") {
		t.Errorf("Message = %q mentions immediate upload", result.Message)
	}

	if p.lastStatus["privacyStatus"] != PrivacyPrivate {
		t.Errorf("privacyStatus sent = %v", p.lastStatus["privacyStatus"])
	}
	if p.lastStatus["publishAt"] != "2030-01-02T12:00:00Z" {
		t.Errorf("publishAt sent = %v", p.lastStatus["publishAt"])
	}
}

func TestSubmitMissingLocationSkipsTransfer(t *testing.T) {
	p := newPlatform()
	p.omitLocation = true
	server := p.start(t)

	progress := make(chan Phase, 8)
	_, err := newTestOrchestrator(&fakeTokens{token: "t"}, server).Submit(context.Background(), Submission{
		Payload:  testPayload(),
		Metadata: testMetadata(),
		Progress: progress,
	})

	var pubErr *Error
	if !errors.As(err, &pubErr) {
		t.Fatalf("Submit() error = %v, want *Error", err)
	}
	if pubErr.Kind != KindProtocol || pubErr.Phase != PhaseInitiate {
		t.Errorf("error kind/phase = %s/%s", pubErr.Kind, pubErr.Phase)
	}
	if !errors.Is(err, upload.ErrMissingSessionLocation) {
		t.Errorf("Submit() error = %v, want ErrMissingSessionLocation", err)
	}
	if _, transferCalls := p.calls(); transferCalls != 0 {
		t.Errorf("transfer calls = %d, want 0", transferCalls)
	}

	for phase := range progress {
		if phase == PhaseTransfer || phase == PhaseDone {
			t.Errorf("unexpected phase %s after failed initiation", phase)
		}
	}
}

func TestSubmitTransferQuotaExceeded(t *testing.T) {
	p := newPlatform()
	p.transferStatus = http.StatusForbidden
	p.transferBody = `{"error":{"code":403,"message":"quota exceeded"}}`
	server := p.start(t)

	_, err := newTestOrchestrator(&fakeTokens{token: "t"}, server).Submit(context.Background(), Submission{
		Payload:  testPayload(),
		Metadata: testMetadata(),
	})

	if KindOf(err) != KindTransfer {
		t.Errorf("KindOf() = %v, want transfer", KindOf(err))
	}
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("Submit() error = %v, want it to mention quota exceeded", err)
	}
	var transferErr *upload.TransferError
	if !errors.As(err, &transferErr) {
		t.Errorf("Submit() error = %v, want *upload.TransferError in chain", err)
	}
}

func TestSubmitUnparseableSuccessIsProtocol(t *testing.T) {
	p := newPlatform()
	p.transferBody = `{"kind":"youtube#video"}`
	server := p.start(t)

	_, err := newTestOrchestrator(&fakeTokens{token: "t"}, server).Submit(context.Background(), Submission{
		Payload:  testPayload(),
		Metadata: testMetadata(),
	})

	if KindOf(err) != KindProtocol {
		t.Errorf("KindOf() = %v, want protocol", KindOf(err))
	}
}

func TestSubmitTokenFailure(t *testing.T) {
	p := newPlatform()
	server := p.start(t)

	_, err := newTestOrchestrator(&fakeTokens{err: auth.ErrCredentialRejected}, server).Submit(context.Background(), Submission{
		Payload:  testPayload(),
		Metadata: testMetadata(),
	})

	if KindOf(err) != KindUpstreamAuth {
		t.Errorf("KindOf() = %v, want upstream auth", KindOf(err))
	}
	if !errors.Is(err, auth.ErrCredentialRejected) {
		t.Errorf("Submit() error = %v, want ErrCredentialRejected", err)
	}
	if initCalls, _ := p.calls(); initCalls != 0 {
		t.Errorf("initiation calls = %d, want 0", initCalls)
	}
}

func TestSubmitRejectsConcurrent(t *testing.T) {
	p := newPlatform()
	server := p.start(t)

	tokens := &fakeTokens{
		token:   "t",
		release: make(chan struct{}),
		entered: make(chan struct{}),
	}
	orch := newTestOrchestrator(tokens, server)

	done := make(chan error, 1)
	go func() {
		_, err := orch.Submit(context.Background(), Submission{Payload: testPayload(), Metadata: testMetadata()})
		done <- err
	}()

	<-tokens.entered
	if _, err := orch.Submit(context.Background(), Submission{Payload: testPayload(), Metadata: testMetadata()}); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Submit() error = %v, want ErrBusy", err)
	}

	close(tokens.release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}

	if initCalls, _ := p.calls(); initCalls != 1 {
		t.Errorf("initiation calls = %d, want 1", initCalls)
	}
}

func TestSubmitUsesFreshSession(t *testing.T) {
	p := newPlatform()
	p.transferStatus = http.StatusInternalServerError
	p.transferBody = `{"error":{"code":500,"message":"backend error"}}`
	server := p.start(t)
	orch := newTestOrchestrator(&fakeTokens{token: "t"}, server)

	if _, err := orch.Submit(context.Background(), Submission{Payload: testPayload(), Metadata: testMetadata()}); err == nil {
		t.Fatal("first Submit() expected error")
	}

	p.mu.Lock()
	p.transferStatus = http.StatusOK
	p.transferBody = `{"id":"retry-ok"}`
	p.mu.Unlock()

	result, err := orch.Submit(context.Background(), Submission{Payload: testPayload(), Metadata: testMetadata()})
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
	if result.VideoID != "retry-ok" {
		t.Errorf("VideoID = %q", result.VideoID)
	}
	if initCalls, _ := p.calls(); initCalls != 2 {
		t.Errorf("initiation calls = %d, want a new session per submission", initCalls)
	}
}

func TestErrorMessageNamesPhase(t *testing.T) {
	err := NewError(KindTransfer, PhaseTransfer, errors.New("quota exceeded"))
	if got := err.Error(); got != "Uploading video failed: quota exceeded" {
		t.Errorf("Error() = %q", got)
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf() on plain error should be 0")
	}
}
