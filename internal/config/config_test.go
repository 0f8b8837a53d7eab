package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"race-planner/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "ALARM_TIME", "REARM_SWEEP_TIME", "SCHEDULE_ENDPOINTS", "SCHEDULE_TTL_HOURS", "POINTS_RULES_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DatabaseURL != "race_planner.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.AlarmTime != "10:00" {
		t.Errorf("AlarmTime = %q, want 10:00", cfg.AlarmTime)
	}
	if cfg.ScheduleTTL != 24*time.Hour {
		t.Errorf("ScheduleTTL = %v, want 24h", cfg.ScheduleTTL)
	}
	if cfg.Rules.Base[model.BucketSprint] != 8 {
		t.Errorf("default sprint base = %d, want 8", cfg.Rules.Base[model.BucketSprint])
	}

	hour, minute, err := cfg.AlarmClock()
	if err != nil || hour != 10 || minute != 0 {
		t.Errorf("AlarmClock = %d:%d (%v), want 10:00", hour, minute, err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "custom.db")
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("ALARM_TIME", "08:30")
	t.Setenv("SCHEDULE_ENDPOINTS", "https://a.example/f1, https://b.example/f1")
	t.Setenv("SCHEDULE_TTL_HOURS", "6")
	t.Setenv("POINTS_RULES_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DatabaseURL != "custom.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if len(cfg.ScheduleEndpoints) != 2 || cfg.ScheduleEndpoints[0] != "https://a.example/f1" {
		t.Errorf("ScheduleEndpoints = %v", cfg.ScheduleEndpoints)
	}
	if cfg.ScheduleTTL != 6*time.Hour {
		t.Errorf("ScheduleTTL = %v, want 6h", cfg.ScheduleTTL)
	}
	if hour, minute, _ := cfg.AlarmClock(); hour != 8 || minute != 30 {
		t.Errorf("AlarmClock = %d:%d, want 8:30", hour, minute)
	}
}

func TestTelegramTokenRequiresChatID(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("POINTS_RULES_FILE", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when token is set without a chat id")
	}
}

func TestRulesFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yml")
	body := "base:\n  sprint: 20\nlatePenaltyAfterDays: 1\nlatePenaltyPoints: -9\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write rules file: %v", err)
	}

	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("POINTS_RULES_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Rules.Base[model.BucketSprint] != 20 {
		t.Errorf("sprint base = %d, want 20 from file", cfg.Rules.Base[model.BucketSprint])
	}
	// Buckets absent from the file keep their defaults.
	if cfg.Rules.Base[model.BucketRace] != 10 {
		t.Errorf("race base = %d, want default 10", cfg.Rules.Base[model.BucketRace])
	}
	if cfg.Rules.LatePenaltyAfterDays != 1 || cfg.Rules.LatePenaltyPoints != -9 {
		t.Errorf("late rules = %d/%d, want 1/-9", cfg.Rules.LatePenaltyAfterDays, cfg.Rules.LatePenaltyPoints)
	}
	// Fields absent from the file keep their defaults too.
	if cfg.Rules.DNFPenaltyPoints != -10 {
		t.Errorf("dnf penalty = %d, want default -10", cfg.Rules.DNFPenaltyPoints)
	}
}
