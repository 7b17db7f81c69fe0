// Package config 加载 embedrec 的分层配置。
//
// 优先级：环境变量 > 配置文件（YAML）> 默认值。
// 环境变量以 EMBEDREC_ 为前缀，双下划线表示层级：
//
//	EMBEDREC_RECOMMEND__TOP_N=20        -> recommend.top_n
//	EMBEDREC_ARTIFACTS__REDIS__ADDR=... -> artifacts.redis.addr
package config

import (
	"time"

	"github.com/rushteam/embedrec/embedding"
	"github.com/rushteam/embedrec/table"
)

// Config 是完整配置。
type Config struct {
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Tables    TablesConfig    `koanf:"tables"`
	Recommend RecommendConfig `koanf:"recommend"`
	Filters   FiltersConfig   `koanf:"filters"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ArtifactsConfig 描述向量矩阵与映射制品的来源。
type ArtifactsConfig struct {
	// Backend：file 读本地目录，redis 读 key-value 存储
	Backend string      `koanf:"backend" validate:"oneof=file redis"`
	Root    string      `koanf:"root"`
	Redis   RedisConfig `koanf:"redis"`

	Items embedding.Paths `koanf:"items"`
	Users embedding.Paths `koanf:"users"`
}

// RedisConfig 是 redis 来源的连接配置。
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	DB        int    `koanf:"db" validate:"gte=0"`
	KeyPrefix string `koanf:"key_prefix"`
}

// TablesConfig 描述目录、简介、评分三张表。
type TablesConfig struct {
	// Engine：csv 通过制品来源读取，duckdb 直接读取本地 Root 目录
	Engine  string        `koanf:"engine" validate:"oneof=csv duckdb"`
	Root    string        `koanf:"root"`
	Files   table.Files   `koanf:"files"`
	Columns table.Columns `koanf:"columns"`
}

// RecommendConfig 是推荐相关参数。
type RecommendConfig struct {
	TopN            int     `koanf:"top_n" validate:"gt=0"`
	SimilarUsers    int     `koanf:"similar_users" validate:"gt=0"`
	Percentile      float64 `koanf:"percentile" validate:"gt=0,lte=1"`
	MissingSynopsis string  `koanf:"missing_synopsis" validate:"oneof=skip fail"`

	UserWeight    float64       `koanf:"user_weight" validate:"gte=0"`
	ContentWeight float64       `koanf:"content_weight" validate:"gte=0"`
	MaxConcurrent int           `koanf:"max_concurrent" validate:"gte=0"`
	SeedTimeout   time.Duration `koanf:"seed_timeout" validate:"gte=0"`
}

// FiltersConfig 是对每次用户推荐生效的过滤器。
type FiltersConfig struct {
	Blacklist       []string `koanf:"blacklist"`
	BlacklistKey    string   `koanf:"blacklist_key"`
	UserBlockPrefix string   `koanf:"user_block_prefix"`
}

// CacheConfig 控制制品缓存，默认关闭：每次调用都重新读取制品。
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl" validate:"gte=0"`
}

// LoggingConfig 是日志配置。
type LoggingConfig struct {
	Level     string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format    string `koanf:"format" validate:"oneof=json console"`
	Caller    bool   `koanf:"caller"`
	Timestamp bool   `koanf:"timestamp"`
}

func defaultConfig() *Config {
	return &Config{
		Artifacts: ArtifactsConfig{
			Backend: "file",
			Root:    "artifacts",
			Redis:   RedisConfig{Addr: "localhost:6379", KeyPrefix: "embedrec"},
			Items: embedding.Paths{
				Matrix: "anime_weights.json",
				Encode: "anime2anime_encoded.json",
				Decode: "anime2anime_decoded.json",
			},
			Users: embedding.Paths{
				Matrix: "user_weights.json",
				Encode: "user2user_encoded.json",
				Decode: "user2user_decoded.json",
			},
		},
		Tables: TablesConfig{
			Engine: "csv",
			Files: table.Files{
				Catalog:  "anime_df.csv",
				Synopsis: "synopsis_df.csv",
				Ratings:  "rating_df.csv",
			},
			Columns: table.DefaultColumns(),
		},
		Recommend: RecommendConfig{
			TopN:            10,
			SimilarUsers:    10,
			Percentile:      0.75,
			MissingSynopsis: "skip",
			UserWeight:      0.5,
			ContentWeight:   0.5,
			MaxConcurrent:   4,
		},
		Filters: FiltersConfig{
			UserBlockPrefix: "user:block",
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			Timestamp: true,
		},
	}
}

// Default 返回默认配置。
func Default() *Config {
	return defaultConfig()
}

// TablesRoot 返回 duckdb 读取表文件的目录，未配置时沿用制品目录。
func (c *Config) TablesRoot() string {
	if c.Tables.Root != "" {
		return c.Tables.Root
	}
	return c.Artifacts.Root
}
