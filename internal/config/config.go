package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// FieldNames maps record fields onto the property names of the Notion
// assignments database.
type FieldNames struct {
	Title    string
	Course   string
	Identity string
	URL      string
	Points   string
	Due      string
	Status   string
}

type Config struct {
	// Canvas
	CanvasBaseURL     string
	CanvasToken       string
	CanvasMaxAttempts int
	CanvasPerPage     int

	// Notion
	NotionToken      string
	NotionDatabaseID string
	NotionVersion    string
	NotionMaxRetries int
	Fields           FieldNames

	// Sync behaviour
	OnlyDated       bool
	MasterTitle     string
	SyllabiPageID   string
	WriteInterval   time.Duration
	CourseInterval  time.Duration
	FailureCooldown time.Duration
	SyncTimeout     time.Duration

	// Trigger surface
	SecretKey    string
	HTTPAddr     string
	SyncSchedule string

	// Run lock (optional)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RunLockTTL    time.Duration

	// Logging
	Debug    bool
	LogLevel string

	// SFTP export target
	SFTPHost    string
	SFTPPort    int
	SFTPUser    string
	SFTPPass    string
	SFTPDir     string
	SFTPHostKey string
}

func Load() Config {
	return Config{
		// Canvas
		CanvasBaseURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("CANVAS_BASE_URL")), "/"),
		CanvasToken:       strings.TrimSpace(os.Getenv("CANVAS_TOKEN")),
		CanvasMaxAttempts: getenvInt("CANVAS_MAX_ATTEMPTS", 1),
		CanvasPerPage:     getenvInt("CANVAS_PER_PAGE", 100),

		// Notion
		NotionToken:      strings.TrimSpace(os.Getenv("NOTION_TOKEN")),
		NotionDatabaseID: strings.TrimSpace(os.Getenv("NOTION_DATABASE_ID")),
		NotionVersion:    getenv("NOTION_VERSION", "2022-06-28"),
		NotionMaxRetries: getenvInt("NOTION_MAX_RETRIES", 0),
		Fields: FieldNames{
			Title:    getenv("NOTION_PROP_NAME", "Name"),
			Course:   getenv("NOTION_PROP_COURSE", "Course"),
			Identity: getenv("NOTION_PROP_CANVAS_ID", "Canvas ID"),
			URL:      getenv("NOTION_PROP_URL", "URL"),
			Points:   getenv("NOTION_PROP_POINTS", "Points"),
			Due:      getenv("NOTION_PROP_DUE", "Due Date"),
			Status:   getenv("NOTION_PROP_STATUS", "Status"),
		},

		// Sync behaviour
		OnlyDated:       getenvBool("ONLY_DATED", true),
		MasterTitle:     getenv("MASTER_TITLE", "Syllabi & Start Here (All Courses)"),
		SyllabiPageID:   strings.TrimSpace(os.Getenv("SYLLABI_PAGE_ID")),
		WriteInterval:   getenvDuration("WRITE_INTERVAL", 400*time.Millisecond),
		CourseInterval:  getenvDuration("COURSE_INTERVAL", 200*time.Millisecond),
		FailureCooldown: getenvDuration("FAILURE_COOLDOWN", 600*time.Millisecond),
		SyncTimeout:     getenvDuration("SYNC_TIMEOUT", 30*time.Minute),

		// Trigger surface
		SecretKey:    strings.TrimSpace(os.Getenv("SYNC_SECRET_KEY")),
		HTTPAddr:     httpAddr(),
		SyncSchedule: strings.TrimSpace(os.Getenv("SYNC_SCHEDULE")),

		// Run lock
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		RunLockTTL:    getenvDuration("RUN_LOCK_TTL", 30*time.Minute),

		// Logging
		Debug:    getenvBool("DEBUG", false),
		LogLevel: getenv("LOG_LEVEL", "info"),

		// SFTP
		SFTPHost:    os.Getenv("SFTP_HOST"),
		SFTPPort:    getenvInt("SFTP_PORT", 22),
		SFTPUser:    os.Getenv("SFTP_USER"),
		SFTPPass:    os.Getenv("SFTP_PASS"),
		SFTPDir:     getenv("SFTP_DIR", "/inbound"),
		SFTPHostKey: os.Getenv("SFTP_HOST_KEY"),
	}
}

// LoadEnvFiles loads ENV_FILE when set, otherwise .env.local then .env.
// Missing files are ignored and variables already set are never overridden.
func LoadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env.local: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// EffectiveLogLevel folds the DEBUG toggle into LOG_LEVEL.
func (c Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

func httpAddr() string {
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		return v
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		return ":" + port
	}
	return ":8080"
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getenvBool accepts 1/true/yes/on and 0/false/no/off, case-insensitively.
func getenvBool(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
