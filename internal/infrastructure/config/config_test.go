package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGO_DB", "SCHEDULE_API_TIMEOUT", "GMAIL_ENABLED", "TIMEZONE", "MAX_UPLOAD_MB", "REDIS_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" || cfg.MongoDB != "railmail" {
		t.Errorf("port/db = %s/%s", cfg.Port, cfg.MongoDB)
	}
	if cfg.ScheduleAPITimeout != 5*time.Second {
		t.Errorf("schedule timeout = %s, want 5s", cfg.ScheduleAPITimeout)
	}
	if cfg.GmailEnabled || cfg.RedisURL != "" {
		t.Errorf("optional features should be off: %+v", cfg)
	}
	if cfg.Timezone != "Asia/Kolkata" {
		t.Errorf("timezone = %s", cfg.Timezone)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SCHEDULE_API_TIMEOUT", "2500ms")
	t.Setenv("SCHEDULE_CACHE_TTL", "3600")
	t.Setenv("SCHEDULE_API_ENABLED", "false")
	t.Setenv("MAX_UPLOAD_MB", "4")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ScheduleAPITimeout != 2500*time.Millisecond {
		t.Errorf("timeout = %s", cfg.ScheduleAPITimeout)
	}
	if cfg.ScheduleCacheTTL != time.Hour {
		t.Errorf("ttl = %s", cfg.ScheduleCacheTTL)
	}
	if cfg.ScheduleAPIEnabled {
		t.Error("schedule api should be disabled")
	}
	if cfg.MaxUploadMB != 4 {
		t.Errorf("max upload = %d", cfg.MaxUploadMB)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"gmail without credentials", map[string]string{"GMAIL_ENABLED": "true", "GMAIL_CLIENT_ID": ""}},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{"zero upload size", map[string]string{"MAX_UPLOAD_MB": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TIMEZONE", "UTC")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("FLAG_ON", "1")
	t.Setenv("FLAG_BAD", "maybe")
	if !getEnvAsBool("FLAG_ON", false) {
		t.Error("FLAG_ON should be true")
	}
	if !getEnvAsBool("FLAG_BAD", true) {
		t.Error("unparseable value should use the default")
	}
}
