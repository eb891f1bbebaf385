// Package oauth provides the loopback callback server and browser
// helpers used by the CLI connect flow.
package oauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

// callbackResult is what a redirect resolves to: an authorization code
// or the reason there is none.
type callbackResult struct {
	code string
	err  error
}

// CallbackServer receives the provider redirect on a loopback port and
// hands the authorization code to the waiting connect flow. The first
// result wins; later redirects only render a page.
type CallbackServer struct {
	addr    string
	state   string
	results chan callbackResult
	server  *http.Server
}

// NewCallbackServer creates a server for one sign-in attempt. The port
// must match the redirect URI registered with the provider, and state
// must be the value sent in the consent URL.
func NewCallbackServer(port int, state string) *CallbackServer {
	return &CallbackServer{
		addr:    fmt.Sprintf("127.0.0.1:%d", port),
		state:   state,
		results: make(chan callbackResult, 1),
	}
}

// Start binds the loopback port and begins serving redirects.
func (s *CallbackServer) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	// The redirect path is whatever google.redirect_uri says, so the
	// handler accepts any path and keys off the query parameters.
	s.server = &http.Server{
		Handler:      http.HandlerFunc(s.handleRedirect),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.deliver(callbackResult{err: err})
		}
	}()

	return nil
}

func (s *CallbackServer) deliver(result callbackResult) {
	select {
	case s.results <- result:
	default:
	}
}

func (s *CallbackServer) handleRedirect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Stray requests such as favicon fetches carry none of the OAuth
	// parameters and must not resolve the wait.
	if query.Get("code") == "" && query.Get("error") == "" && query.Get("state") == "" {
		http.NotFound(w, r)
		return
	}

	page := func(title, detail string) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, resultPage, html.EscapeString(title), html.EscapeString(detail))
	}

	if name := query.Get("error"); name != "" {
		detail := query.Get("error_description")
		s.deliver(callbackResult{err: fmt.Errorf("authorization refused: %s %s", name, detail)})
		page("Authorization failed", detail)
		return
	}

	if subtle.ConstantTimeCompare([]byte(query.Get("state")), []byte(s.state)) != 1 {
		s.deliver(callbackResult{err: errors.New("state parameter does not match this sign-in attempt")})
		page("Authorization failed", "The state parameter does not match this sign-in attempt.")
		return
	}

	code := query.Get("code")
	if code == "" {
		s.deliver(callbackResult{err: errors.New("redirect carried no authorization code")})
		page("Authorization failed", "No authorization code was received.")
		return
	}

	s.deliver(callbackResult{code: code})
	page("Google account connected", "You can close this window and return to the terminal.")
}

// WaitForCode blocks until a redirect resolves or the timeout elapses.
func (s *CallbackServer) WaitForCode(timeout time.Duration) (string, error) {
	select {
	case result := <-s.results:
		return result.code, result.err
	case <-time.After(timeout):
		return "", fmt.Errorf("no authorization callback within %s", timeout)
	}
}

// Stop shuts the server down, waiting briefly for in-flight redirects.
func (s *CallbackServer) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

const resultPage = `<!DOCTYPE html>
<html>
<head>
    <title>Site Kit</title>
    <style>
        body { font-family: sans-serif; text-align: center; padding-top: 20vh; background: #fafafa; }
        h1 { font-size: 24px; color: #333f50; }
        p { color: #7b8088; }
    </style>
</head>
<body>
    <h1>%s</h1>
    <p>%s</p>
</body>
</html>`

// OpenBrowser opens the default browser at the given URL.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
