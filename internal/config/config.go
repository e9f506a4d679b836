package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	AccessToken    string                `yaml:"access_token"`
	Timezone       string                `yaml:"timezone"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
	Grading        GradingConfig         `yaml:"grading"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	S3             S3Options             `yaml:"s3"`
}

// GradingConfig configures the vision grading pipeline.
type GradingConfig struct {
	Providers    []AIProvider       `yaml:"providers"`
	Assignment   *AIModelAssignment `yaml:"assignment"`
	Temperature  float64            `yaml:"temperature"`
	MaxTokens    int                `yaml:"max_tokens"`
	MaxImageEdge int                `yaml:"max_image_edge"`
	JPEGQuality  int                `yaml:"jpeg_quality"`
}

// AIProvider describes one configured vision model endpoint.
type AIProvider struct {
	ID           string `yaml:"id"           json:"id"`
	Name         string `yaml:"name"         json:"name"`
	Type         string `yaml:"type"         json:"type"` // OpenAI | OpenAI-Compatible | Anthropic
	APIKey       string `yaml:"api_key"      json:"api_key"`
	Endpoint     string `yaml:"endpoint"     json:"endpoint,omitempty"`
	DefaultModel string `yaml:"default_model" json:"default_model"`
	Enabled      bool   `yaml:"enabled"      json:"enabled"`
}

// AIModelAssignment pins grading to a provider and overrides its model.
type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id" json:"provider_id"`
	Model      string `yaml:"model"       json:"model"`
}

// DatabaseRuntimeConfig configures the optional MySQL grading archive.
type DatabaseRuntimeConfig struct {
	Enable    bool              `yaml:"enable"`
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

// S3Options configures the optional report upload target.
type S3Options struct {
	Enable          bool   `yaml:"enable"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyleAccess bool   `yaml:"path_style_access"`
}

type RuntimePathsConfig struct {
	Logs    string `yaml:"logs"`
	Exports string `yaml:"exports"`
	Uploads string `yaml:"uploads"`
}

type rawAppConfig struct {
	Port               int                `yaml:"port"`
	Env                string             `yaml:"env"`
	NodeEnv            string             `yaml:"node_env"`
	AccessToken        string             `yaml:"access_token"`
	Token              string             `yaml:"token"`
	Timezone           string             `yaml:"timezone"`
	TZ                 string             `yaml:"tz"`
	AllowedOrigins     []string           `yaml:"allowed_origins"`
	CORSAllowedOrigins []string           `yaml:"cors_allowed_origins"`
	Paths              rawPathsConfig     `yaml:"paths"`
	LogDir             string             `yaml:"log_dir"`
	ExportDir          string             `yaml:"export_dir"`
	UploadDir          string             `yaml:"upload_dir"`
	Grading            rawGradingConfig   `yaml:"grading"`
	Database           rawDatabaseConfig  `yaml:"database"`
	DatabaseURL        string             `yaml:"database_url"`
	S3                 S3Options          `yaml:"s3"`
}

type rawGradingConfig struct {
	Providers    []AIProvider       `yaml:"providers"`
	Assignment   *AIModelAssignment `yaml:"assignment"`
	Model        string             `yaml:"model"`
	Temperature  *float64           `yaml:"temperature"`
	MaxTokens    int                `yaml:"max_tokens"`
	MaxImageEdge int                `yaml:"max_image_edge"`
	JPEGQuality  int                `yaml:"jpeg_quality"`
}

type rawDatabaseConfig struct {
	Enable    *bool             `yaml:"enable"`
	DSN       string            `yaml:"dsn"`
	URL       string            `yaml:"url"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Username  string            `yaml:"username"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	DBName    string            `yaml:"db_name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type rawPathsConfig struct {
	Logs    string `yaml:"logs"`
	Exports string `yaml:"exports"`
	Uploads string `yaml:"uploads"`
}

// Load reads and validates the YAML config at path.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := defaultAppConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := rawAppConfig{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	applyRawAppConfig(&cfg, raw)
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Database.Enable && (cfg.Database.Port < 1 || cfg.Database.Port > 65535) {
		return nil, fmt.Errorf("invalid database.port %d in %q, expected 1-65535", cfg.Database.Port, path)
	}
	if cfg.Grading.JPEGQuality < 1 || cfg.Grading.JPEGQuality > 100 {
		return nil, fmt.Errorf("invalid grading.jpeg_quality %d in %q, expected 1-100", cfg.Grading.JPEGQuality, path)
	}
	if cfg.Grading.MaxImageEdge < 1 {
		return nil, fmt.Errorf("invalid grading.max_image_edge %d in %q, expected >= 1", cfg.Grading.MaxImageEdge, path)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Grading: GradingConfig{
			Temperature:  defaultTemperature,
			MaxTokens:    defaultMaxTokens,
			MaxImageEdge: defaultMaxImageEdge,
			JPEGQuality:  defaultJPEGQuality,
		},
		Database: DatabaseRuntimeConfig{
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
	}
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.AccessToken); v != "" {
		cfg.AccessToken = v
	}
	if v := strings.TrimSpace(raw.Token); v != "" {
		cfg.AccessToken = v
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(raw.TZ); v != "" {
		cfg.Timezone = v
	}

	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	case raw.CORSAllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.CORSAllowedOrigins)
	}

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Paths.Exports); v != "" {
		cfg.Paths.Exports = v
	}
	if v := strings.TrimSpace(raw.ExportDir); v != "" {
		cfg.Paths.Exports = v
	}
	if v := strings.TrimSpace(raw.Paths.Uploads); v != "" {
		cfg.Paths.Uploads = v
	}
	if v := strings.TrimSpace(raw.UploadDir); v != "" {
		cfg.Paths.Uploads = v
	}
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)

	cfg.Grading = applyRawGradingConfig(cfg.Grading, raw.Grading)
	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw)
	cfg.S3 = normalizeS3Options(raw.S3, cfg.S3)

	cfg.Env = normalizeEnv(cfg.Env)
}

func applyRawGradingConfig(current GradingConfig, raw rawGradingConfig) GradingConfig {
	cfg := current

	if raw.Providers != nil {
		cfg.Providers = normalizeProviders(raw.Providers)
	}
	if raw.Assignment != nil {
		assignment := *raw.Assignment
		assignment.ProviderID = strings.TrimSpace(assignment.ProviderID)
		assignment.Model = strings.TrimSpace(assignment.Model)
		if assignment.ProviderID != "" || assignment.Model != "" {
			cfg.Assignment = &assignment
		}
	}
	if v := strings.TrimSpace(raw.Model); v != "" && cfg.Assignment == nil {
		cfg.Assignment = &AIModelAssignment{Model: v}
	}
	if raw.Temperature != nil && *raw.Temperature >= 0 {
		cfg.Temperature = *raw.Temperature
	}
	if raw.MaxTokens > 0 {
		cfg.MaxTokens = raw.MaxTokens
	}
	if raw.MaxImageEdge != 0 {
		cfg.MaxImageEdge = raw.MaxImageEdge
	}
	if raw.JPEGQuality != 0 {
		cfg.JPEGQuality = raw.JPEGQuality
	}
	return cfg
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawAppConfig) DatabaseRuntimeConfig {
	cfg := current

	if raw.Database.Enable != nil {
		cfg.Enable = *raw.Database.Enable
	}
	if v := strings.TrimSpace(raw.Database.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.Database.URL); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.DatabaseURL); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.Database.Host); v != "" {
		cfg.Host = v
	}
	if raw.Database.Port != 0 {
		cfg.Port = raw.Database.Port
	}
	if v := strings.TrimSpace(raw.Database.User); v != "" {
		cfg.User = v
	}
	if v := strings.TrimSpace(raw.Database.Username); v != "" {
		cfg.User = v
	}
	if v := strings.TrimSpace(raw.Database.Password); v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(raw.Database.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.Database.DBName); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.Database.Charset); v != "" {
		cfg.Charset = v
	}
	if raw.Database.ParseTime != nil {
		cfg.ParseTime = *raw.Database.ParseTime
	}
	if v := strings.TrimSpace(raw.Database.Loc); v != "" {
		cfg.Loc = v
	}
	if raw.Database.Params != nil {
		cfg.Params = copyStringMap(raw.Database.Params)
	}

	return normalizeDatabaseConfig(cfg)
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

func (c *AppConfig) ExportDir() string {
	if c == nil {
		return ResolveRuntimePath("", "exports")
	}
	return ResolveRuntimePath(c.Paths.Exports, "exports")
}

func (c *AppConfig) UploadDir() string {
	if c == nil {
		return ResolveRuntimePath("", "uploads")
	}
	return ResolveRuntimePath(c.Paths.Uploads, "uploads")
}
