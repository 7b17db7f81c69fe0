package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "embedrec.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Recommend.TopN != 10 || cfg.Recommend.Percentile != 0.75 || cfg.Recommend.MissingSynopsis != "skip" {
		t.Errorf("Recommend = %+v", cfg.Recommend)
	}
	if cfg.Tables.Columns.SynopsisText != "sypnopsis" || cfg.Tables.Files.Ratings != "rating_df.csv" {
		t.Errorf("Tables = %+v", cfg.Tables)
	}
	if cfg.Cache.Enabled || cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeYAML(t, `
artifacts:
  root: /data/artifacts
  items:
    matrix: items.yaml
recommend:
  top_n: 5
  seed_timeout: 2s
cache:
  enabled: true
  ttl: 30s
logging:
  level: debug
`)
	t.Setenv("EMBEDREC_RECOMMEND__TOP_N", "7")
	t.Setenv("EMBEDREC_FILTERS__BLACKLIST", "A, B,,C")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Recommend.TopN != 7 {
		t.Errorf("TopN = %d, want 7 (env wins)", cfg.Recommend.TopN)
	}
	if cfg.Recommend.SeedTimeout != 2*time.Second || cfg.Cache.TTL != 30*time.Second || !cfg.Cache.Enabled {
		t.Errorf("durations = %v / %+v", cfg.Recommend.SeedTimeout, cfg.Cache)
	}
	if cfg.Artifacts.Root != "/data/artifacts" || cfg.Artifacts.Items.Matrix != "items.yaml" {
		t.Errorf("Artifacts = %+v", cfg.Artifacts)
	}
	// 未覆盖的字段保留默认值
	if cfg.Artifacts.Items.Encode != "anime2anime_encoded.json" {
		t.Errorf("Items.Encode = %q", cfg.Artifacts.Items.Encode)
	}
	if !reflect.DeepEqual(cfg.Filters.Blacklist, []string{"A", "B", "C"}) {
		t.Errorf("Blacklist = %v", cfg.Filters.Blacklist)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"percentile out of range", "recommend:\n  percentile: 1.5\n"},
		{"unknown backend", "artifacts:\n  backend: s3\n"},
		{"unknown engine", "tables:\n  engine: parquet\n"},
		{"unknown policy", "recommend:\n  missing_synopsis: ignore\n"},
		{"zero top n", "recommend:\n  top_n: 0\n"},
		{"redis without addr", "artifacts:\n  backend: redis\n  redis:\n    addr: \"\"\n"},
		{"both weights zero", "recommend:\n  user_weight: 0\n  content_weight: 0\n"},
		{"empty matrix path", "artifacts:\n  users:\n    matrix: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeYAML(t, tt.yaml)); err == nil {
				t.Error("Load() error = nil, want validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() error = nil for missing file")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"EMBEDREC_RECOMMEND__TOP_N":        "recommend.top_n",
		"EMBEDREC_ARTIFACTS__REDIS__ADDR":  "artifacts.redis.addr",
		"EMBEDREC_LOGGING__LEVEL":          "logging.level",
		"EMBEDREC_TABLES__COLUMNS__ITEM_ID": "tables.columns.item_id",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
