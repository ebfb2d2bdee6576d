package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "formsubmit.yaml", `
url: http://localhost:5000/
timeout: 30s
sanitize: false
contract: builtin:voiceform
log_format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.URL = "http://localhost:5000/"
	want.Timeout = Duration(30 * time.Second)
	want.Sanitize = false
	want.Contract = "builtin:voiceform"
	want.LogFormat = "json"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "formsubmit.toml", `
url = "http://localhost:5000/"
form_id = "cloneForm"
log_level = "debug"
timeout = "1m30s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.URL != "http://localhost:5000/" || cfg.FormID != "cloneForm" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.SpinnerID != "loadingSpinner" {
		t.Fatalf("expected defaults to survive, got %+v", cfg)
	}
	if cfg.Timeout.Std() != 90*time.Second {
		t.Fatalf("timeout = %s, want 1m30s", cfg.Timeout.Std())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "formsubmit.yml", "url: http://file/\nresult_id: fromFile\n")
	t.Setenv("FORMSUBMIT_URL", "http://env/")
	t.Setenv("FORMSUBMIT_TIMEOUT", "5s")
	t.Setenv("FORMSUBMIT_SANITIZE", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.URL != "http://env/" {
		t.Fatalf("url = %q, want env value", cfg.URL)
	}
	if cfg.ResultID != "fromFile" {
		t.Fatalf("result id = %q, want file value", cfg.ResultID)
	}
	if cfg.Timeout.Std() != 5*time.Second || cfg.Sanitize {
		t.Fatalf("unexpected env overlay %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantErr: "config: read",
		},
		{
			name:    "unknown extension",
			path:    func(t *testing.T) string { return writeConfig(t, "formsubmit.json", "{}") },
			wantErr: "unsupported file extension",
		},
		{
			name:    "malformed yaml",
			path:    func(t *testing.T) string { return writeConfig(t, "bad.yaml", "url: [") },
			wantErr: "config: decode",
		},
		{
			name:    "empty ids",
			path:    func(t *testing.T) string { return writeConfig(t, "ids.yaml", "form_id: \"\"\nresult_id: \"\"\n") },
			wantErr: "form_id is required",
		},
		{
			name:    "bad toml timeout",
			path:    func(t *testing.T) string { return writeConfig(t, "slow.toml", `timeout = "soon"`) },
			wantErr: "config: decode",
		},
		{
			name:    "bad log format",
			path:    func(t *testing.T) string { return writeConfig(t, "log.toml", `log_format = "xml"`) },
			wantErr: "log_format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseEnvRejectsBadDuration(t *testing.T) {
	t.Setenv("FORMSUBMIT_TIMEOUT", "soon")
	cfg := Default()
	if err := ParseEnv(&cfg); err == nil {
		t.Fatalf("expected bad duration to fail")
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte(" 250ms ")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Std() != 250*time.Millisecond {
		t.Fatalf("duration = %s", d.Std())
	}
	text, err := d.MarshalText()
	if err != nil || string(text) != "250ms" {
		t.Fatalf("marshal = %q, %v", text, err)
	}
}
