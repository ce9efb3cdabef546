package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
auth:
  enabled: true
  api_key: secret
discovery:
  workers: 6
  queue_depth: 128
  default_radius: 500
  job_timeout_seconds: 120
places:
  api_key: places-key
  timeout_seconds: 20
fetch:
  timeout_seconds: 45
  user_agent: menu-agent
headless:
  enabled: true
  max_parallel: 2
  nav_timeout_seconds: 30
openai:
  api_key: openai-key
  model: gpt-4o-mini
storage:
  blob_backend: local
  catalog_backend: postgres
  local_dir: /tmp/blobs
  postgres_dsn: postgres://localhost/menus
pubsub:
  enabled: true
  project_id: proj
  topic_name: done
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Auth.Enabled || cfg.Auth.APIKey != "secret" {
		t.Fatalf("expected auth enabled with secret key")
	}
	if cfg.Discovery.Workers != 6 || cfg.Discovery.DefaultRadius != 500 {
		t.Fatalf("expected discovery overrides to apply: %+v", cfg.Discovery)
	}
	if cfg.Places.APIKey != "places-key" || cfg.Places.TimeoutSeconds != 20 {
		t.Fatalf("expected places overrides to apply: %+v", cfg.Places)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("expected model override, got %s", cfg.OpenAI.Model)
	}
	if cfg.Storage.BlobBackend != "local" || cfg.Storage.CatalogBackend != "postgres" {
		t.Fatalf("expected storage overrides to apply: %+v", cfg.Storage)
	}
	if got := cfg.JobTimeout(); got != 120*time.Second {
		t.Fatalf("expected job timeout 120s, got %v", got)
	}
	if got := cfg.FetchTimeout(); got != 45*time.Second {
		t.Fatalf("expected fetch timeout 45s, got %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Discovery.DefaultRadius != 1000 {
		t.Fatalf("expected default radius 1000, got %d", cfg.Discovery.DefaultRadius)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("expected default model, got %s", cfg.OpenAI.Model)
	}
	if cfg.Storage.CatalogBackend != "memory" {
		t.Fatalf("expected memory catalog backend, got %s", cfg.Storage.CatalogBackend)
	}
	if cfg.Fetch.MaxBodyBytes != 8<<20 {
		t.Fatalf("expected default body cap, got %d", cfg.Fetch.MaxBodyBytes)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:    ServerConfig{Port: 8080},
		Discovery: DiscoveryConfig{Workers: 1, QueueDepth: 8},
		Fetch:     FetchConfig{TimeoutSeconds: 10},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid workers",
			cfg: func() Config {
				c := base
				c.Discovery.Workers = 0
				return c
			}(),
			want: "discovery.workers",
		},
		{
			name: "invalid queue depth",
			cfg: func() Config {
				c := base
				c.Discovery.QueueDepth = 0
				return c
			}(),
			want: "discovery.queue_depth",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.Fetch.TimeoutSeconds = 0
				return c
			}(),
			want: "fetch.timeout_seconds",
		},
		{
			name: "headless missing max parallel",
			cfg: func() Config {
				c := base
				c.Headless.Enabled = true
				c.Headless.MaxParallel = 0
				return c
			}(),
			want: "headless.max_parallel",
		},
		{
			name: "auth missing api key",
			cfg: func() Config {
				c := base
				c.Auth.Enabled = true
				return c
			}(),
			want: "auth.api_key",
		},
		{
			name: "pubsub missing project",
			cfg: func() Config {
				c := base
				c.PubSub.Enabled = true
				c.PubSub.TopicName = "done"
				return c
			}(),
			want: "pubsub.project_id",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
