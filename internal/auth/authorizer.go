package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"golang.org/x/oauth2"
)

const defaultAuthTimeout = 5 * time.Minute

// Authorizer runs the browser consent flow against a local callback server
// and persists the resulting token, refresh token included.
type Authorizer struct {
	Config    *oauth2.Config
	TokenPath string
	Timeout   time.Duration
	// OpenURL opens the consent page. Defaults to the system browser.
	OpenURL func(string) error
	// Prompt is told the consent URL before the browser opens.
	Prompt func(authURL string)
}

func (a *Authorizer) Authorize(ctx context.Context) (*oauth2.Token, error) {
	redirect, err := url.Parse(a.Config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect url: %w", err)
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	if redirect.Path == "" {
		redirect.Path = "/"
	}

	cfg := *a.Config
	redirect.Host = listener.Addr().String()
	cfg.RedirectURL = redirect.String()

	state := uuid.NewString()
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			sendErr(errChan, errors.New("state mismatch in callback"))
			http.Error(w, "invalid state", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			sendErr(errChan, fmt.Errorf("no code in callback"))
			_, _ = fmt.Fprintf(w, "<html><body><h1>Error</h1><p>No authorization code received.</p></body></html>")
			return
		}

		select {
		case codeChan <- code:
		default:
		}
		_, _ = fmt.Fprintf(w, "<html><body><h1>Success!</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			sendErr(errChan, err)
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if a.Prompt != nil {
		a.Prompt(authURL)
	}

	openURL := a.OpenURL
	if openURL == nil {
		openURL = browser.OpenURL
	}
	_ = openURL(authURL)

	timeout := a.Timeout
	if timeout == 0 {
		timeout = defaultAuthTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case code := <-codeChan:
		token, err := cfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange code: %w", err)
		}
		if err := SaveToken(a.TokenPath, token); err != nil {
			return nil, err
		}
		return token, nil

	case err := <-errChan:
		return nil, err

	case <-timer.C:
		return nil, fmt.Errorf("authentication timed out")

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func sendErr(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}
