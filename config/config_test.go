package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rushteam/feedrec/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.ShutdownTimeout != 15*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Ledger.Backend != BackendMemory {
		t.Errorf("ledger backend = %q, want memory", cfg.Ledger.Backend)
	}

	sc := cfg.ScoringConfig()
	def := core.DefaultScoringConfig()
	if sc.ContentWeight != def.ContentWeight || sc.CollaborativeWeight != def.CollaborativeWeight ||
		sc.NeighborThreshold != def.NeighborThreshold || sc.MinScore != def.MinScore ||
		sc.DefaultLimit != def.DefaultLimit || sc.MaxLimit != def.MaxLimit {
		t.Errorf("ScoringConfig() = %+v, want %+v", sc, def)
	}
	for _, kind := range []core.InteractionKind{core.InteractionView, core.InteractionLike, core.InteractionComment, core.InteractionShare, "bookmark"} {
		if got, want := sc.Interaction.BaseOf(kind), def.Interaction.BaseOf(kind); got != want {
			t.Errorf("BaseOf(%s) = %v, want %v", kind, got, want)
		}
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  read_timeout: 3s
engine:
  min_score: 0.2
  default_limit: 10
  weights:
    share: 3
ledger:
  backend: redis
redis:
  addr: "redis:6379"
feed:
  stages:
    - type: rerank.diversity
      config:
        max_per_category: 2
    - type: filter.expr
      config:
        expr: "item.sentiment >= 0.3"
`)
	t.Setenv("FEEDREC_ENGINE_MIN_SCORE", "0.35")
	t.Setenv("FEEDREC_ENGINE_WEIGHTS_LIKE", "1.5")
	t.Setenv("FEEDREC_SERVER_ADDR", ":7070")
	t.Setenv("FEEDREC_FEEDBACK_BACKEND", "kafka")
	t.Setenv("FEEDREC_FEEDBACK_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("server.addr = %q, env should win", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("server.read_timeout = %v, want 3s", cfg.Server.ReadTimeout)
	}
	if cfg.Engine.MinScore != 0.35 {
		t.Errorf("engine.min_score = %v, want 0.35", cfg.Engine.MinScore)
	}
	if cfg.Engine.DefaultLimit != 10 || cfg.Engine.MaxLimit != 100 {
		t.Errorf("limits = %d/%d, want 10/100", cfg.Engine.DefaultLimit, cfg.Engine.MaxLimit)
	}
	if cfg.Engine.Weights.Share != 3 || cfg.Engine.Weights.Like != 1.5 || cfg.Engine.Weights.View != 0.5 {
		t.Errorf("weights = %+v", cfg.Engine.Weights)
	}
	if cfg.Ledger.Backend != BackendRedis || cfg.Redis.Addr != "redis:6379" {
		t.Errorf("ledger/redis = %+v / %+v", cfg.Ledger, cfg.Redis)
	}
	if cfg.Feedback.Backend != FeedbackKafka || len(cfg.Feedback.Brokers) != 2 || cfg.Feedback.Brokers[1] != "k2:9092" {
		t.Errorf("feedback = %+v", cfg.Feedback)
	}
	if len(cfg.Feed.Stages) != 2 || cfg.Feed.Stages[0].Type != "rerank.diversity" || cfg.Feed.Stages[1].Config["expr"] != "item.sentiment >= 0.3" {
		t.Errorf("stages = %+v", cfg.Feed.Stages)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("文件不存在", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("Load() error = nil, want error")
		}
	})
	t.Run("校验失败", func(t *testing.T) {
		path := writeConfig(t, "ledger:\n  backend: cassandra\n")
		_, err := Load(path)
		if err == nil || !core.IsInvalidInput(err) {
			t.Errorf("Load() error = %v, want INVALID_INPUT", err)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"默认配置", func(*Config) {}, ""},
		{"负的融合权重", func(c *Config) { c.Engine.ContentWeight = -0.1 }, "fusion weights"},
		{"负的行为权重", func(c *Config) { c.Engine.Weights.Share = -1 }, "interaction weights"},
		{"阈值越界", func(c *Config) { c.Engine.NeighborThreshold = 1 }, "neighbor_threshold"},
		{"阈值为 0", func(c *Config) { c.Engine.NeighborThreshold = 0 }, "neighbor_threshold"},
		{"负的阈值", func(c *Config) { c.Engine.NeighborThreshold = -0.2 }, "neighbor_threshold"},
		{"limit 为 0", func(c *Config) { c.Engine.DefaultLimit = 0 }, "default_limit"},
		{"默认长度超上限", func(c *Config) { c.Engine.DefaultLimit = 200 }, "exceeds max_limit"},
		{"未知账本", func(c *Config) { c.Ledger.Backend = "sqlite" }, "unknown ledger backend"},
		{"redis 缺地址", func(c *Config) { c.Ledger.Backend = BackendRedis; c.Redis.Addr = "" }, "redis.addr"},
		{"模拟轮数", func(c *Config) { c.Simulate.Enabled = true; c.Simulate.Rounds = 0 }, "simulate.rounds"},
		{"监听地址", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"未知反馈后端", func(c *Config) { c.Feedback.Backend = "nats" }, "unknown feedback backend"},
		{"kafka 缺 broker", func(c *Config) { c.Feedback.Backend = FeedbackKafka }, "feedback.brokers"},
		{"kafka 负的超时", func(c *Config) {
			c.Feedback.Backend = FeedbackKafka
			c.Feedback.Brokers = []string{"localhost:9092"}
			c.Feedback.CloseTimeout = -time.Second
		}, "close_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := map[string]string{
		"FEEDREC_ENGINE_MIN_SCORE":     "engine.min_score",
		"FEEDREC_ENGINE_WEIGHTS_SHARE": "engine.weights.share",
		"FEEDREC_LEDGER_KEY_PREFIX":    "ledger.key_prefix",
		"FEEDREC_REDIS_ADDR":           "redis.addr",
		"FEEDREC_CONFIG":               "",
	}
	for in, want := range tests {
		if got := envTransform(in); got != want {
			t.Errorf("envTransform(%s) = %q, want %q", in, got, want)
		}
	}
}
