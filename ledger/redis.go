package ledger

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/rushteam/feedrec/core"
)

// RedisLedger 是基于 Redis 的交互账本，适合多实例共享交互历史。
//
// Key 布局：
//   - {KeyPrefix}:user:{userID}  列表，按写入顺序保存 JSON 编码的交互
//   - {KeyPrefix}:users          有序集合，score 为首次出现序号
//   - {KeyPrefix}:seq            首次出现序号计数器
//
// 一次 Record 的三步写入在同一个 Lua 脚本中执行，要么全部生效要么都不生效。
// Redis Cluster 下 KeyPrefix 需要带 hash tag（如 "{ledger}"），保证这些 key 落在同一个 slot。
type RedisLedger struct {
	client    redis.UniversalClient
	KeyPrefix string
}

// NewRedisLedger 基于已有的 Redis 客户端创建账本。
func NewRedisLedger(client redis.UniversalClient, keyPrefix string) *RedisLedger {
	if keyPrefix == "" {
		keyPrefix = "ledger"
	}
	return &RedisLedger{client: client, KeyPrefix: keyPrefix}
}

// DialRedisLedger 连接 Redis 并创建账本。
func DialRedisLedger(ctx context.Context, addr, password string, db int, keyPrefix string) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, core.NewDomainError(core.ModuleLedger, core.ErrorCodeUnavailable, fmt.Sprintf("ledger: redis %s unavailable: %v", addr, err))
	}
	return NewRedisLedger(client, keyPrefix), nil
}

func (l *RedisLedger) Name() string { return "redis" }

func (l *RedisLedger) userKey(userID string) string { return l.KeyPrefix + ":user:" + userID }
func (l *RedisLedger) usersKey() string             { return l.KeyPrefix + ":users" }
func (l *RedisLedger) seqKey() string               { return l.KeyPrefix + ":seq" }

// recordScript 追加交互，并在用户首次出现时登记序号。
// ZADD NX 保证已登记用户的序号不变，失败重试也不会产生重复或遗漏。
var recordScript = redis.NewScript(`
if redis.call('ZSCORE', KEYS[2], ARGV[1]) == false then
	local seq = redis.call('INCR', KEYS[3])
	redis.call('ZADD', KEYS[2], 'NX', seq, ARGV[1])
end
return redis.call('RPUSH', KEYS[1], ARGV[2])
`)

func (l *RedisLedger) Record(ctx context.Context, in core.Interaction) error {
	if err := validate(in); err != nil {
		return err
	}
	fill(&in)

	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode interaction: %w", err)
	}

	keys := []string{l.userKey(in.UserID), l.usersKey(), l.seqKey()}
	if err := recordScript.Run(ctx, l.client, keys, in.UserID, data).Err(); err != nil {
		return fmt.Errorf("append interaction for %s: %w", in.UserID, err)
	}
	return nil
}

func (l *RedisLedger) InteractionsFor(ctx context.Context, userID string) ([]core.Interaction, error) {
	raw, err := l.client.LRange(ctx, l.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load interactions for %s: %w", userID, err)
	}
	out := make([]core.Interaction, 0, len(raw))
	for _, s := range raw {
		var in core.Interaction
		if err := json.Unmarshal([]byte(s), &in); err != nil {
			return nil, fmt.Errorf("decode interaction for %s: %w", userID, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func (l *RedisLedger) Users(ctx context.Context) ([]string, error) {
	users, err := l.client.ZRange(ctx, l.usersKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

// Close 关闭底层 Redis 连接。
func (l *RedisLedger) Close() error {
	return l.client.Close()
}

var _ core.InteractionLedger = (*RedisLedger)(nil)
