package core

import "context"

// Store 是存储后端的公共接口。
//
// 定义在领域层（core），由基础设施层（store）实现：
//   - store.MemoryStore 用于测试/开发/单机
//   - store.RedisStore 用于生产
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Close 关闭连接/释放资源
	Close() error
}

// ZMember 是有序集合中的一个成员及其分数。
type ZMember struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// KeyValueStore 是支持有序集合的存储，承载热门榜单与内容黑名单。
// 如果后端不支持某些操作，可返回 ErrStoreNotSupported。
type KeyValueStore interface {
	Store

	// ZAdd 设置有序集合成员的分数
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZIncrBy 累加有序集合成员的分数，返回累加后的分数
	ZIncrBy(ctx context.Context, key string, increment float64, member string) (float64, error)

	// ZRem 删除有序集合成员，成员不存在时不报错
	ZRem(ctx context.Context, key string, member string) error

	// ZScore 获取成员的分数，成员不存在时返回 ErrStoreNotFound
	ZScore(ctx context.Context, key string, member string) (float64, error)

	// ZRevRangeWithScores 按分数降序返回闭区间 [start, stop] 内的成员与分数，stop < 0 表示到末尾。
	// 同分成员按 member 字典序降序。
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ZMember, error)
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrStoreNotSupported 表示操作不支持
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Module == ModuleStore && domainErr.Code == ErrorCodeNotFound
}

// IsStoreNotSupported 检查错误是否为操作不支持
func IsStoreNotSupported(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Module == ModuleStore && domainErr.Code == ErrorCodeNotSupported
}
