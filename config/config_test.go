package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty config gets name and environment", func(t *testing.T) {
		var cfg ServiceConfig
		cfg.ApplyDefaults()
		if cfg.Name != "foremit" {
			t.Errorf("expected 'foremit', got %q", cfg.Name)
		}
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info level, got %q", cfg.Logging.Level)
		}
	})

	t.Run("debug raises log level", func(t *testing.T) {
		cfg := ServiceConfig{Debug: true}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug level, got %q", cfg.Logging.Level)
		}
	})

	t.Run("explicit level wins over debug", func(t *testing.T) {
		cfg := ServiceConfig{Debug: true}
		cfg.Logging.Level = "warn"
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "warn" {
			t.Errorf("expected warn level, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func(mut func(*ServiceConfig)) ServiceConfig {
		c := ServiceConfig{Name: "svc", Environment: "production"}
		c.Logging.ApplyDefaults()
		if mut != nil {
			mut(&c)
		}
		return c
	}

	tests := []struct {
		name   string
		cfg    ServiceConfig
		errMsg string
	}{
		{"valid", valid(nil), ""},
		{"missing name", valid(func(c *ServiceConfig) { c.Name = "" }), "config.name is required"},
		{"invalid environment", valid(func(c *ServiceConfig) { c.Environment = "qa" }), "config.environment must be one of"},
		{"invalid logging", valid(func(c *ServiceConfig) { c.Logging.Format = "xml" }), "config.logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %v", tc.errMsg, err)
			}
		})
	}
}

type testSequence struct {
	Event     string        `mapstructure:"event"`
	End       []string      `mapstructure:"end"`
	Limit     int           `mapstructure:"limit"`
	KeepAlive time.Duration `mapstructure:"keep_alive"`
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Sequence      testSequence `yaml:"sequence" mapstructure:"sequence"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	path := writeFile(t, "config.yml", `
name: tailer
environment: staging
sequence:
  event: line
  end: [close]
  limit: 3
  keep_alive: 250ms
`)

	var cfg testConfig
	if err := LoadConfig("tailer", &cfg, WithConfigFile(path), WithEnvFile("/nonexistent/.env")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "tailer" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
	if cfg.Sequence.Event != "line" || cfg.Sequence.Limit != 3 {
		t.Errorf("unexpected sequence config %+v", cfg.Sequence)
	}
	if !slices.Equal(cfg.Sequence.End, []string{"close"}) {
		t.Errorf("expected end [close], got %v", cfg.Sequence.End)
	}
	if cfg.Sequence.KeepAlive != 250*time.Millisecond {
		t.Errorf("expected 250ms keep alive, got %v", cfg.Sequence.KeepAlive)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yml", "sequence:\n  limit: 3\n")
	t.Setenv("SEQUENCE_LIMIT", "7")
	t.Setenv("SEQUENCE_END", "close,finish")
	t.Setenv("SEQUENCE_KEEP_ALIVE", "2s")

	var cfg testConfig
	if err := LoadConfig("tailer", &cfg, WithConfigFile(path), WithEnvFile("/nonexistent/.env")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Sequence.Limit != 7 {
		t.Errorf("expected env limit 7, got %d", cfg.Sequence.Limit)
	}
	if !slices.Equal(cfg.Sequence.End, []string{"close", "finish"}) {
		t.Errorf("expected [close finish], got %v", cfg.Sequence.End)
	}
	if cfg.Sequence.KeepAlive != 2*time.Second {
		t.Errorf("expected 2s, got %v", cfg.Sequence.KeepAlive)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := writeFile(t, "config.yml", "sequence: [unterminated\n")
	var cfg testConfig
	if err := LoadConfig("tailer", &cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	path := writeFile(t, "config.yml", "environment: nowhere\n")
	var cfg testConfig
	err := Load("tailer", &cfg, WithConfigFile(path), WithEnvFile("/nonexistent/.env"))
	if err == nil || !strings.Contains(err.Error(), "config.environment") {
		t.Fatalf("expected environment validation error, got %v", err)
	}
	if cfg.Name != "foremit" {
		t.Errorf("expected defaults applied before validation, got name %q", cfg.Name)
	}
}

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func TestResolverSearchOrder(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		wantConfig string
		wantEnv    string
	}{
		{"cmd dir wins", []string{"cmd/tailer/config.yml", "config.yml"}, "cmd/tailer/config.yml", ""},
		{"config dir", []string{"config/config.yml"}, "config/config.yml", ""},
		{"root", []string{"./config.yml", "./.env"}, "./config.yml", "./.env"},
		{"named env before generic", []string{"./.env", "config/.env.tailer"}, "", "config/.env.tailer"},
		{"nothing", nil, "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}}
			for _, f := range tc.files {
				fs.files[f] = true
			}
			r := &Resolver{FileSystem: fs}
			got := r.ResolveFiles("tailer", LoaderConfig{})
			if got.ConfigFile != tc.wantConfig {
				t.Errorf("config: expected %q, got %q", tc.wantConfig, got.ConfigFile)
			}
			if got.EnvFile != tc.wantEnv {
				t.Errorf("env: expected %q, got %q", tc.wantEnv, got.EnvFile)
			}
		})
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	r := &Resolver{FileSystem: &mockFS{}}
	got := r.ResolveFiles("tailer", LoaderConfig{ConfigFile: "a.yml", EnvFile: "b.env"})
	if got.ConfigFile != "a.yml" || got.EnvFile != "b.env" {
		t.Errorf("expected explicit paths, got %+v", got)
	}
}

func TestLoadConfigUsesFileSystem(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"custom.env": true}}
	var cfg testConfig
	if err := LoadConfig("tailer", &cfg, WithFileSystem(fs), WithEnvFile("custom.env")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !slices.Equal(fs.loaded, []string{"custom.env"}) {
		t.Errorf("expected custom.env loaded, got %v", fs.loaded)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("SEQUENCE_KEEP_ALIVE")
	for _, want := range []string{"sequence_keep_alive", "sequence.keep.alive", "sequence.keep_alive", "sequence.keep.alive"} {
		if !slices.Contains(got, want) {
			t.Errorf("expected %q in %v", want, got)
		}
	}
	if len(envKeyVariants("PATH")) != 1 {
		t.Errorf("expected single variant for PATH")
	}
}
