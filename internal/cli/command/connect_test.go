package command

import (
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	cliconfig "github.com/peermeet/peermeet-go/internal/cli/config"
)

func TestConnect_SavesServer(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()
	srv.handle("/health", func(w http.ResponseWriter, r *http.Request) {
		envelopeResponse(w, map[string]string{"status": "ok"})
	})

	cfgPath := filepath.Join(t.TempDir(), "cli.yaml")
	out, err := runAppWithConfig(t, nil, cfgPath, "connect", srv.URL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !strings.Contains(out, "Connected to "+srv.URL) {
		t.Errorf("output = %q", out)
	}

	cfg, err := cliconfig.Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server != srv.URL {
		t.Errorf("saved server = %q, want %q", cfg.Server, srv.URL)
	}
}

func TestConnect_UnreachableServerNotSaved(t *testing.T) {
	srv := newMockServer()
	srv.Close() // nothing listens anymore

	cfgPath := filepath.Join(t.TempDir(), "cli.yaml")
	if _, err := runAppWithConfig(t, nil, cfgPath, "connect", srv.URL); err == nil {
		t.Fatal("connect to a dead server should fail")
	}

	cfg, err := cliconfig.Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server == srv.URL {
		t.Error("dead server was saved as default")
	}
}
