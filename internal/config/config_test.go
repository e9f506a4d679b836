package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "env: development\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 2335 {
		t.Fatalf("unexpected default port %d", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Fatalf("development env should report dev")
	}
	if cfg.Grading.Temperature != 0.2 || cfg.Grading.MaxImageEdge != 2048 || cfg.Grading.JPEGQuality != 85 {
		t.Fatalf("unexpected grading defaults %+v", cfg.Grading)
	}
	if cfg.Database.Enable {
		t.Fatalf("database must stay disabled by default")
	}
	if cfg.Database.Host != "127.0.0.1" || cfg.Database.Port != 3306 {
		t.Fatalf("unexpected database defaults %+v", cfg.Database)
	}
}

func TestLoadAliasKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, strings.Join([]string{
		"node_env: PRODUCTION",
		"token: secret-token",
		"tz: Asia/Shanghai",
		"database_url: user:pw@tcp(db:3306)/essays",
		"grading:",
		"  model: gpt-4o",
	}, "\n")+"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "production" || cfg.IsDev() {
		t.Fatalf("node_env alias not applied, env=%q", cfg.Env)
	}
	if cfg.AccessToken != "secret-token" {
		t.Fatalf("token alias not applied, got %q", cfg.AccessToken)
	}
	if cfg.Timezone != "Asia/Shanghai" {
		t.Fatalf("tz alias not applied, got %q", cfg.Timezone)
	}
	if cfg.Database.DSN != "user:pw@tcp(db:3306)/essays" {
		t.Fatalf("database_url alias not applied, got %q", cfg.Database.DSN)
	}
	if cfg.Grading.Assignment == nil || cfg.Grading.Assignment.Model != "gpt-4o" {
		t.Fatalf("grading.model shorthand not applied, got %+v", cfg.Grading.Assignment)
	}
}

func TestLoadProviders(t *testing.T) {
	cfg, err := Load(writeConfig(t, strings.Join([]string{
		"grading:",
		"  providers:",
		"    - id: ark",
		"      type: OpenAI-Compatible",
		"      api_key: k",
		"      endpoint: https://ark.cn-beijing.volces.com/api/v3",
		"      default_model: doubao-1.5-vision-pro",
		"      enabled: true",
		"  assignment:",
		"    provider_id: ark",
	}, "\n")+"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Grading.Providers) != 1 {
		t.Fatalf("unexpected providers %+v", cfg.Grading.Providers)
	}
	p := cfg.Grading.Providers[0]
	if p.Name != "ark" {
		t.Fatalf("provider name should fall back to id, got %q", p.Name)
	}
	if cfg.Grading.Assignment == nil || cfg.Grading.Assignment.ProviderID != "ark" {
		t.Fatalf("assignment not applied: %+v", cfg.Grading.Assignment)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"port":         "port: 70000\n",
		"jpeg_quality": "grading:\n  jpeg_quality: 101\n",
		"image_edge":   "grading:\n  max_image_edge: -1\n",
		"db_port":      "database:\n  enable: true\n  port: 99999\n",
	}
	for name, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	if _, err := Load(writeConfig(t, "prot: 8080\n")); err == nil {
		t.Fatalf("misspelled key must be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestDSNValue(t *testing.T) {
	explicit := DatabaseRuntimeConfig{DSN: "u:p@tcp(h:3306)/db"}
	if got := explicit.DSNValue(); got != "u:p@tcp(h:3306)/db" {
		t.Fatalf("explicit dsn must win, got %q", got)
	}

	built := DatabaseRuntimeConfig{
		Host: "db.local", Port: 3307, User: "grader", Password: "pw",
		Name: "essays", Charset: "utf8mb4", ParseTime: true, Loc: "Local",
	}
	dsn := built.DSNValue()
	for _, want := range []string{
		"grader:pw@tcp(db.local:3307)/essays",
		"charset=utf8mb4",
		"parseTime=true",
		"loc=Local",
	} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("dsn missing %q: %s", want, dsn)
		}
	}
}
