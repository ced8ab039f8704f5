// Package store 提供 KV 存储抽象与内存/Redis 两种实现，
// 在 cinerec 中用作影片 Embedding 的缓存后端：重启进程时已编码过的
// 描述文本可直接命中缓存，跳过编码服务调用。
package store

import (
	"context"

	"github.com/rushteam/cinerec/core"
)

// Store 是存储的领域接口。
//
// 设计原则：
//   - 定义在领域层语义之上，由基础设施实现
//   - 批量接口（BatchGet/BatchSet）用于减少网络往返，片库编码时按批读写
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value，ttl 单位为秒（可选，0 表示不过期）
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// BatchGet 批量读取，只返回存在的 key
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	// BatchSet 批量写入
	BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error

	// Close 关闭连接/释放资源
	Close() error
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrNotFound 表示 key 不存在
	ErrNotFound = core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound, "store: key not found")
)
