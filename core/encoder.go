package core

import "context"

// TextEncoder 是文本编码服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（service）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 避免循环依赖：领域层不依赖基础设施层
//
// 契约：
//   - 批量输入一组文本，按原顺序返回每个文本一个定长向量
//   - 固定模型版本下结果确定（同一输入得到同一向量）
//   - 调用失败时错误必须向上传播，此层不做重试（避免掩盖系统性故障）
//
// 实现：
//   - service.STEncoderClient 实现此接口（sentence-transformers REST 服务）
//   - 测试中可用确定性的假实现替换
type TextEncoder interface {
	// EncodeTexts 批量编码文本为向量，返回与输入等长且顺序对应的向量列表
	EncodeTexts(ctx context.Context, texts []string) ([][]float64, error)
}

// Encoder 错误定义（使用统一的 DomainError）
var (
	// ErrEncoderUnavailable 表示编码服务不可用
	ErrEncoderUnavailable = NewDomainError(ModuleEncoder, ErrorCodeUnavailable, "encoder: service unavailable")
)
