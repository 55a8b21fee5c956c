// Package config 负责服务配置的加载与校验，以及 Feed 后置阶段 Node 的注册表。
//
// 配置按三层叠加，后者覆盖前者：
//  1. 结构体默认值
//  2. YAML 文件（FEEDREC_CONFIG 指定，否则当前目录的 config.yaml，均可缺省）
//  3. 环境变量 FEEDREC_*，例如 FEEDREC_ENGINE_MIN_SCORE -> engine.min_score
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pipeline"
	"github.com/rushteam/feedrec/pkg/logging"
)

const (
	// EnvPrefix 是环境变量前缀。
	EnvPrefix = "FEEDREC_"

	// ConfigPathEnvVar 指定配置文件路径。
	ConfigPathEnvVar = "FEEDREC_CONFIG"

	// DefaultConfigPath 是未指定时查找的配置文件。
	DefaultConfigPath = "config.yaml"
)

// 账本后端
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config 是服务的完整配置。
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  logging.Config `koanf:"logging"`
	Engine   EngineConfig   `koanf:"engine"`
	Ledger   LedgerConfig   `koanf:"ledger"`
	Redis    RedisConfig    `koanf:"redis"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Feed     FeedConfig     `koanf:"feed"`
	Simulate SimulateConfig `koanf:"simulate"`
	Feedback FeedbackConfig `koanf:"feedback"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// EngineConfig 对应 core.ScoringConfig。
type EngineConfig struct {
	ContentWeight       float64       `koanf:"content_weight"`
	CollaborativeWeight float64       `koanf:"collaborative_weight"`
	NeighborThreshold   float64       `koanf:"neighbor_threshold"`
	MinScore            float64       `koanf:"min_score"`
	DefaultLimit        int           `koanf:"default_limit"`
	MaxLimit            int           `koanf:"max_limit"`
	Weights             WeightsConfig `koanf:"weights"`
}

// WeightsConfig 是各行为类型的基础权重。
type WeightsConfig struct {
	View    float64 `koanf:"view"`
	Like    float64 `koanf:"like"`
	Comment float64 `koanf:"comment"`
	Share   float64 `koanf:"share"`
	Default float64 `koanf:"default"`
}

// LedgerConfig 选择账本后端；redis 后端同时承载热门榜单。
type LedgerConfig struct {
	Backend   string `koanf:"backend"`
	KeyPrefix string `koanf:"key_prefix"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type CatalogConfig struct {
	// Path 启动时加载的内容文件（YAML 或 JSON），可为空
	Path string `koanf:"path"`
}

type FeedConfig struct {
	// Stages 排序之后追加的 Node，类型见 SupportedTypes
	Stages      []pipeline.NodeConfig `koanf:"stages"`
	TrendingKey string                `koanf:"trending_key"`

	// BlacklistKey 存储中黑名单有序集合的 key，为空时不启用
	BlacklistKey string `koanf:"blacklist_key"`
}

type SimulateConfig struct {
	Enabled bool   `koanf:"enabled"`
	Rounds  int    `koanf:"rounds"`
	Seed    uint64 `koanf:"seed"`
	// RatePerSecond 每秒写入的交互数，<= 0 不限速
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// FeedbackConfig 选择反馈事件的投递目标。
type FeedbackConfig struct {
	// Backend 取值 none/memory/kafka
	Backend         string        `koanf:"backend"`
	Brokers         []string      `koanf:"brokers"`
	Topic           string        `koanf:"topic"`
	ClientID        string        `koanf:"client_id"`
	BatchSize       int           `koanf:"batch_size"`
	FlushInterval   time.Duration `koanf:"flush_interval"`
	Compression     string        `koanf:"compression"`
	MaxBuffered     int           `koanf:"max_buffered"`
	DeliveryTimeout time.Duration `koanf:"delivery_timeout"`
	CloseTimeout    time.Duration `koanf:"close_timeout"`
}

// 反馈后端
const (
	FeedbackNone   = "none"
	FeedbackMemory = "memory"
	FeedbackKafka  = "kafka"
)

// Default 返回默认配置。
func Default() Config {
	sc := core.DefaultScoringConfig()
	w := sc.Interaction
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: logging.DefaultConfig(),
		Engine: EngineConfig{
			ContentWeight:       sc.ContentWeight,
			CollaborativeWeight: sc.CollaborativeWeight,
			NeighborThreshold:   sc.NeighborThreshold,
			MinScore:            sc.MinScore,
			DefaultLimit:        sc.DefaultLimit,
			MaxLimit:            sc.MaxLimit,
			Weights: WeightsConfig{
				View:    w.BaseOf(core.InteractionView),
				Like:    w.BaseOf(core.InteractionLike),
				Comment: w.BaseOf(core.InteractionComment),
				Share:   w.BaseOf(core.InteractionShare),
				Default: w.Default,
			},
		},
		Ledger: LedgerConfig{
			Backend:   BackendMemory,
			KeyPrefix: "feedrec",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Feed: FeedConfig{
			TrendingKey: "trending:content",
		},
		Simulate: SimulateConfig{
			Rounds: 3,
			Seed:   42,
		},
		Feedback: FeedbackConfig{
			Backend:         FeedbackNone,
			Topic:           "feedrec.feedback",
			BatchSize:       100,
			FlushInterval:   time.Second,
			MaxBuffered:     10000,
			DeliveryTimeout: 30 * time.Second,
			CloseTimeout:    10 * time.Second,
		},
	}
}

// Load 按 默认值 -> 文件 -> 环境变量 的顺序加载并校验配置。
// path 为空时使用 FEEDREC_CONFIG 或 config.yaml，文件不存在则跳过。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}

// 以逗号分隔的环境变量需要拆成列表的配置路径。
var sliceConfigPaths = []string{"feedback.brokers"}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return err
		}
	}
	return nil
}

// 两级以上的配置路径，其余按 section_key 拆一次。
var nestedPrefixes = []string{"engine_weights"}

// envTransform 把环境变量名映射为配置路径：
//
//	FEEDREC_ENGINE_MIN_SCORE     -> engine.min_score
//	FEEDREC_ENGINE_WEIGHTS_SHARE -> engine.weights.share
//	FEEDREC_CONFIG               -> 忽略
func envTransform(key string) string {
	if key == ConfigPathEnvVar {
		return ""
	}
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, p := range nestedPrefixes {
		if rest, ok := strings.CutPrefix(key, p+"_"); ok {
			return strings.ReplaceAll(p, "_", ".") + "." + rest
		}
	}
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + rest
}

func invalid(format string, args ...any) error {
	return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: "+fmt.Sprintf(format, args...))
}

// Validate 校验配置取值。
func (c *Config) Validate() error {
	e := c.Engine
	if e.ContentWeight < 0 || e.CollaborativeWeight < 0 {
		return invalid("fusion weights must be >= 0 (content=%v, collaborative=%v)", e.ContentWeight, e.CollaborativeWeight)
	}
	// 邻居判定是严格大于，0 会让任意有交集的用户成为邻居
	if e.NeighborThreshold <= 0 || e.NeighborThreshold >= 1 {
		return invalid("neighbor_threshold must be in (0, 1), got %v", e.NeighborThreshold)
	}
	w := e.Weights
	if w.View < 0 || w.Like < 0 || w.Comment < 0 || w.Share < 0 || w.Default < 0 {
		return invalid("interaction weights must be >= 0")
	}
	if e.DefaultLimit <= 0 || e.MaxLimit <= 0 {
		return invalid("default_limit and max_limit must be > 0")
	}
	if e.DefaultLimit > e.MaxLimit {
		return invalid("default_limit %d exceeds max_limit %d", e.DefaultLimit, e.MaxLimit)
	}

	switch c.Ledger.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return invalid("redis.addr is required for the redis ledger")
		}
	default:
		return invalid("unknown ledger backend %q", c.Ledger.Backend)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr is required")
	}
	switch c.Feedback.Backend {
	case FeedbackNone, FeedbackMemory:
	case FeedbackKafka:
		if len(c.Feedback.Brokers) == 0 || c.Feedback.Topic == "" {
			return invalid("feedback.brokers and feedback.topic are required for the kafka backend")
		}
		if c.Feedback.MaxBuffered < 0 || c.Feedback.DeliveryTimeout < 0 || c.Feedback.CloseTimeout < 0 {
			return invalid("feedback.max_buffered, delivery_timeout and close_timeout must be >= 0")
		}
	default:
		return invalid("unknown feedback backend %q", c.Feedback.Backend)
	}
	if c.Simulate.Enabled && c.Simulate.Rounds <= 0 {
		return invalid("simulate.rounds must be > 0 when simulation is enabled")
	}
	return nil
}

// ScoringConfig 转换为引擎使用的打分配置。
func (c *Config) ScoringConfig() core.ScoringConfig {
	e := c.Engine
	return core.ScoringConfig{
		Interaction: core.InteractionWeights{
			Base: map[core.InteractionKind]float64{
				core.InteractionView:    e.Weights.View,
				core.InteractionLike:    e.Weights.Like,
				core.InteractionComment: e.Weights.Comment,
				core.InteractionShare:   e.Weights.Share,
			},
			Default: e.Weights.Default,
		},
		ContentWeight:       e.ContentWeight,
		CollaborativeWeight: e.CollaborativeWeight,
		NeighborThreshold:   e.NeighborThreshold,
		MinScore:            e.MinScore,
		DefaultLimit:        e.DefaultLimit,
		MaxLimit:            e.MaxLimit,
	}
}
