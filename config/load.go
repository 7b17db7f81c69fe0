package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 是环境变量前缀。
const EnvPrefix = "EMBEDREC_"

var validate = validator.New()

// Load 依次加载默认值、path 指向的 YAML 文件（path 为空时跳过）和环境变量，然后校验。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitListField(k, "filters.blacklist"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envTransformFunc：EMBEDREC_RECOMMEND__TOP_N -> recommend.top_n
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// splitListField 把环境变量里逗号分隔的字符串转换为列表。
func splitListField(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var items []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return k.Set(path, items)
}

// Validate 校验字段取值，以及字段之间的约束。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	var errs []error
	if c.Artifacts.Backend == "file" && c.Artifacts.Root == "" {
		errs = append(errs, errors.New("artifacts.root is required for the file backend"))
	}
	if c.Artifacts.Backend == "redis" && c.Artifacts.Redis.Addr == "" {
		errs = append(errs, errors.New("artifacts.redis.addr is required for the redis backend"))
	}
	if c.Tables.Engine == "duckdb" && c.TablesRoot() == "" {
		errs = append(errs, errors.New("tables.root is required for the duckdb engine"))
	}
	if c.Recommend.UserWeight == 0 && c.Recommend.ContentWeight == 0 {
		errs = append(errs, errors.New("recommend.user_weight and recommend.content_weight cannot both be zero"))
	}
	return errors.Join(errs...)
}
