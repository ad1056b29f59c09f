package command

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockServer is a test HTTP server with per-path handlers that answer
// in the server's envelope format.
type mockServer struct {
	*httptest.Server
	handlers map[string]http.HandlerFunc
}

func newMockServer() *mockServer {
	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for pattern, handler := range m.handlers {
			if strings.HasPrefix(r.URL.Path, pattern) {
				handler(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	return m
}

func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.handlers[pattern] = handler
}

// envelopeResponse writes a success envelope with the given data.
func envelopeResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"code":    "OK",
		"message": "Success",
		"data":    data,
	})
}

// errorResponse writes an error envelope.
func errorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}

// runApp runs the CLI with the given args against the mock server and
// returns captured stdout. The config flag points at a per-test file
// so tests never touch ~/.peermeet.
func runApp(t *testing.T, srv *mockServer, args ...string) (string, error) {
	t.Helper()
	return runAppWithConfig(t, srv, filepath.Join(t.TempDir(), "cli.yaml"), args...)
}

func runAppWithConfig(t *testing.T, srv *mockServer, cfgPath string, args ...string) (string, error) {
	t.Helper()

	full := []string{"peermeet-cli", "--config", cfgPath}
	if srv != nil {
		full = append(full, "--server", srv.URL)
	}
	full = append(full, args...)

	var runErr error
	out := captureStdout(t, func() {
		runErr = App().Run(full)
	})
	return out, runErr
}

// captureStdout redirects os.Stdout for the duration of fn.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured stdout: %v", err)
	}
	return string(data)
}
