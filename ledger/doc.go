// Package ledger 提供 core.InteractionLedger 的实现：进程内账本与 Redis 账本。
//
// 账本只追加：同一用户对同一内容的多次交互全部保留，读取返回写入顺序的快照。
package ledger
