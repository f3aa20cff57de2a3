package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

const (
	maxPageSize       = 100
	defaultAPIURL     = "https://api.notion.com/v1"
	defaultAPIVersion = "2022-06-28"
)

// Properties names the Notion database columns the schedule is read from.
type Properties struct {
	Title          string
	Date           string
	Category       string
	Visibility     string
	PublishedValue string
}

type Runtime struct {
	ConfigFile string

	APIURL            string
	APIKey            string
	NotionVersion     string
	DatabaseID        string
	Timeout           time.Duration
	RequestsPerSecond float64
	PageSize          int

	Locale     string
	Properties Properties

	StateDir     string
	MenuDir      string
	SnapshotPath string
	MenuPath     string

	ListenAddr  string
	RefreshCron string

	LogLevel  string
	LogFormat string
	LogFile   string
}

func Load() (Runtime, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Runtime{}, fmt.Errorf("resolve home dir: %w", err)
	}

	xdgConfig := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	xdgState := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if xdgState == "" {
		xdgState = filepath.Join(home, ".local", "state")
	}

	defaultConfig := filepath.Join(xdgConfig, "momoyama", "schedule.env")
	configFile := strings.TrimSpace(os.Getenv("MOMOYAMA_SCHEDULE_CONFIG_FILE"))
	if configFile == "" {
		configFile = defaultConfig
	}

	if err := loadEnvFile(configFile); err != nil {
		return Runtime{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("MOMOYAMA_SCHEDULE")
	v.AutomaticEnv()

	_ = v.BindEnv("api_url", "MOMOYAMA_SCHEDULE_API_URL", "NOTION_API_URL")
	_ = v.BindEnv("api_key", "MOMOYAMA_SCHEDULE_API_KEY", "NOTION_API_KEY", "NOTION_TOKEN")
	_ = v.BindEnv("notion_version", "MOMOYAMA_SCHEDULE_NOTION_VERSION", "NOTION_VERSION")
	_ = v.BindEnv("database_id", "MOMOYAMA_SCHEDULE_DATABASE_ID", "NOTION_SCHEDULE_DATABASE_ID")
	_ = v.BindEnv("timeout_seconds", "MOMOYAMA_SCHEDULE_TIMEOUT_SECONDS")
	_ = v.BindEnv("requests_per_second", "MOMOYAMA_SCHEDULE_REQUESTS_PER_SECOND")
	_ = v.BindEnv("page_size", "MOMOYAMA_SCHEDULE_PAGE_SIZE")
	_ = v.BindEnv("locale", "MOMOYAMA_SCHEDULE_LOCALE")
	_ = v.BindEnv("title_property", "MOMOYAMA_SCHEDULE_TITLE_PROPERTY")
	_ = v.BindEnv("date_property", "MOMOYAMA_SCHEDULE_DATE_PROPERTY")
	_ = v.BindEnv("category_property", "MOMOYAMA_SCHEDULE_CATEGORY_PROPERTY")
	_ = v.BindEnv("visibility_property", "MOMOYAMA_SCHEDULE_VISIBILITY_PROPERTY")
	_ = v.BindEnv("published_value", "MOMOYAMA_SCHEDULE_PUBLISHED_VALUE")
	_ = v.BindEnv("state_dir", "MOMOYAMA_SCHEDULE_STATE_DIR")
	_ = v.BindEnv("menu_dir", "MOMOYAMA_SCHEDULE_MENU_DIR")
	_ = v.BindEnv("listen_addr", "MOMOYAMA_SCHEDULE_LISTEN_ADDR")
	_ = v.BindEnv("refresh_cron", "MOMOYAMA_SCHEDULE_REFRESH_CRON")
	_ = v.BindEnv("log_level", "MOMOYAMA_SCHEDULE_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("log_format", "MOMOYAMA_SCHEDULE_LOG_FORMAT")
	_ = v.BindEnv("log_file", "MOMOYAMA_SCHEDULE_LOG_FILE")

	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("notion_version", defaultAPIVersion)
	v.SetDefault("timeout_seconds", 15)
	v.SetDefault("requests_per_second", 3.0)
	v.SetDefault("page_size", maxPageSize)
	v.SetDefault("locale", "ja-JP")
	v.SetDefault("title_property", "名前")
	v.SetDefault("date_property", "日付")
	v.SetDefault("category_property", "種類")
	v.SetDefault("visibility_property", "Web公開")
	v.SetDefault("published_value", "公開")
	v.SetDefault("state_dir", filepath.Join(xdgState, "momoyama", "schedule"))
	v.SetDefault("menu_dir", filepath.Join(xdgState, "waybar", "menus"))
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("refresh_cron", "*/15 * * * *")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	databaseID := ""
	if raw := strings.TrimSpace(v.GetString("database_id")); raw != "" {
		databaseID, err = normalizeDatabaseID(raw)
		if err != nil {
			return Runtime{}, err
		}
	}

	pageSize := v.GetInt("page_size")
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	timeoutSeconds := v.GetInt("timeout_seconds")
	if timeoutSeconds <= 0 {
		timeoutSeconds = 15
	}

	rps := v.GetFloat64("requests_per_second")
	if rps <= 0 {
		rps = 3
	}

	apiURL := strings.TrimRight(strings.TrimSpace(v.GetString("api_url")), "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	notionVersion := strings.TrimSpace(v.GetString("notion_version"))
	if notionVersion == "" {
		notionVersion = defaultAPIVersion
	}

	stateDir := strings.TrimSpace(v.GetString("state_dir"))
	if stateDir == "" {
		stateDir = filepath.Join(xdgState, "momoyama", "schedule")
	}

	menuDir := strings.TrimSpace(v.GetString("menu_dir"))
	if menuDir == "" {
		menuDir = filepath.Join(xdgState, "waybar", "menus")
	}

	return Runtime{
		ConfigFile:        configFile,
		APIURL:            apiURL,
		APIKey:            strings.TrimSpace(v.GetString("api_key")),
		NotionVersion:     notionVersion,
		DatabaseID:        databaseID,
		Timeout:           time.Duration(timeoutSeconds) * time.Second,
		RequestsPerSecond: rps,
		PageSize:          pageSize,
		Locale:            fallback(v.GetString("locale"), "ja-JP"),
		Properties: Properties{
			Title:          fallback(v.GetString("title_property"), "名前"),
			Date:           fallback(v.GetString("date_property"), "日付"),
			Category:       fallback(v.GetString("category_property"), "種類"),
			Visibility:     fallback(v.GetString("visibility_property"), "Web公開"),
			PublishedValue: fallback(v.GetString("published_value"), "公開"),
		},
		StateDir:     stateDir,
		MenuDir:      menuDir,
		SnapshotPath: filepath.Join(stateDir, "schedule.json"),
		MenuPath:     filepath.Join(menuDir, "momoyama-schedule.xml"),
		ListenAddr:   fallback(v.GetString("listen_addr"), "127.0.0.1:8080"),
		RefreshCron:  fallback(v.GetString("refresh_cron"), "*/15 * * * *"),
		LogLevel:     fallback(v.GetString("log_level"), "info"),
		LogFormat:    fallback(strings.ToLower(v.GetString("log_format")), "console"),
		LogFile:      strings.TrimSpace(v.GetString("log_file")),
	}, nil
}

// normalizeDatabaseID accepts the dashed and the compact form Notion shows in
// share links and returns the canonical dashed form.
func normalizeDatabaseID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid database id %q: %w", raw, err)
	}
	return id.String(), nil
}

func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))
		if key == "" {
			continue
		}

		// The process environment wins over the file.
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, value)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan env file %s: %w", path, err)
	}
	return nil
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
		return value[1 : len(value)-1]
	}
	return value
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}
