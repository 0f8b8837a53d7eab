package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"race-planner/internal/scoring"
)

// Config keeps runtime settings for the planner.
type Config struct {
	DatabaseURL string

	// TelegramToken enables Telegram alert delivery when set; otherwise
	// alerts go to the process log.
	TelegramToken  string
	TelegramChatID int64

	// AlarmTime is the HH:MM local time deadline alerts fire at.
	AlarmTime string

	// RearmSweepTime is the HH:MM local time of the daily alarm re-derive.
	RearmSweepTime string

	ScheduleEndpoints []string
	ScheduleTTL       time.Duration

	Rules scoring.Rules
}

// Load reads configuration from environment variables with sane defaults.
// POINTS_RULES_FILE optionally points at a YAML file overriding the scoring
// rules.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		AlarmTime:      strings.TrimSpace(os.Getenv("ALARM_TIME")),
		RearmSweepTime: strings.TrimSpace(os.Getenv("REARM_SWEEP_TIME")),
		ScheduleTTL:    parseHours(strings.TrimSpace(os.Getenv("SCHEDULE_TTL_HOURS"))),
		Rules:          scoring.DefaultRules(),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "race_planner.db"
	}
	if cfg.AlarmTime == "" {
		cfg.AlarmTime = "10:00"
	}
	if cfg.RearmSweepTime == "" {
		cfg.RearmSweepTime = "00:05"
	}
	if cfg.ScheduleTTL == 0 {
		cfg.ScheduleTTL = 24 * time.Hour
	}

	if raw := strings.TrimSpace(os.Getenv("SCHEDULE_ENDPOINTS")); raw != "" {
		for _, endpoint := range strings.Split(raw, ",") {
			if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
				cfg.ScheduleEndpoints = append(cfg.ScheduleEndpoints, endpoint)
			}
		}
	}

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID must be a number: %w", err)
		}
		cfg.TelegramChatID = chatID
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	if path := strings.TrimSpace(os.Getenv("POINTS_RULES_FILE")); path != "" {
		rules, err := loadRules(path, cfg.Rules)
		if err != nil {
			return cfg, err
		}
		cfg.Rules = rules
	}

	return cfg, nil
}

// AlarmClock parses AlarmTime into hour and minute.
func (c Config) AlarmClock() (hour, minute int, err error) {
	return parseClock(c.AlarmTime)
}

// loadRules merges a YAML rules file over the given defaults. Buckets left
// out of the file keep their default base values.
func loadRules(path string, defaults scoring.Rules) (scoring.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("read rules file: %w", err)
	}
	rules := defaults
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return defaults, fmt.Errorf("parse rules file %q: %w", path, err)
	}
	if rules.Base == nil {
		rules.Base = defaults.Base
	} else {
		for bucket, base := range defaults.Base {
			if _, ok := rules.Base[bucket]; !ok {
				rules.Base[bucket] = base
			}
		}
	}
	return rules, nil
}

func parseClock(timeStr string) (int, int, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", timeStr)
	}
	return hour, minute, nil
}

func parseHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
