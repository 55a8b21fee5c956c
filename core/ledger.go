package core

import "context"

// InteractionLedger 是交互账本的领域接口：按用户记录带权交互，只追加。
//
// 约束：
//   - 支持多个调用方并发 Record，以及打分时并发读取
//   - 读取返回调用开始前已写入记录的快照（前缀），不要求跨写入方线性一致
//   - 同一用户对同一内容的多次交互全部保留，不去重、不截断
//   - 引擎自身从不删除记录
//
// 实现：
//   - ledger.MemoryLedger 进程内账本
//   - ledger.RedisLedger 基于 Redis 列表
type InteractionLedger interface {
	// Name 返回账本后端名称（用于日志/监控）
	Name() string

	// Record 追加一条交互
	Record(ctx context.Context, in Interaction) error

	// InteractionsFor 按写入顺序返回用户的全部交互
	InteractionsFor(ctx context.Context, userID string) ([]Interaction, error)

	// Users 按首次出现顺序返回有交互记录的用户
	Users(ctx context.Context) ([]string, error)
}

// SeenContent 把交互列表转换为已交互内容 ID 集合。
func SeenContent(history []Interaction) map[string]struct{} {
	seen := make(map[string]struct{}, len(history))
	for _, in := range history {
		seen[in.ContentID] = struct{}{}
	}
	return seen
}
