package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidate_NormalizesCommaDelimitedConfigPaths(t *testing.T) {
	opts := New()
	opts.ConfigPaths = []string{"app-config.yaml, app-config.local.yaml", "extra.yaml", ",,"}

	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	want := []string{"app-config.yaml", "app-config.local.yaml", "extra.yaml"}
	if !reflect.DeepEqual(opts.ConfigPaths, want) {
		t.Fatalf("ConfigPaths normalized mismatch: got %v want %v", opts.ConfigPaths, want)
	}
}

func TestValidate_RequiresConfigPath(t *testing.T) {
	opts := New()
	opts.ConfigPaths = []string{" , "}

	err := opts.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "at least one --config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_LogSettings(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel string
		wantFmt   string
		wantErr   string
	}{
		{name: "defaults", level: "info", format: "text", wantLevel: "info", wantFmt: "text"},
		{name: "normalizes case", level: " DEBUG ", format: "JSON", wantLevel: "debug", wantFmt: "json"},
		{name: "empty level defaults to info", level: "", format: "console", wantLevel: "info", wantFmt: "console"},
		{name: "bad level", level: "loud", format: "text", wantErr: "unsupported --log-level"},
		{name: "bad format", level: "info", format: "xml", wantErr: "unsupported --log-format"},
		{name: "empty format", level: "info", format: " ", wantErr: "--log-format must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := New()
			opts.LogLevel = tt.level
			opts.LogFormat = tt.format

			err := opts.Validate()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() returned error: %v", err)
			}
			if opts.LogLevel != tt.wantLevel {
				t.Fatalf("LogLevel: got %q want %q", opts.LogLevel, tt.wantLevel)
			}
			if opts.LogFormat != tt.wantFmt {
				t.Fatalf("LogFormat: got %q want %q", opts.LogFormat, tt.wantFmt)
			}
		})
	}
}
