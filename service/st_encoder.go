// Package service 提供外部模型服务的客户端实现。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rushteam/cinerec/core"
)

// STEncoderClient 是 sentence-transformers 风格文本编码服务的 REST 客户端，
// 实现 core.TextEncoder 接口。
//
// 服务契约：
//   - POST {endpoint}/encode，请求体 {"model": "...", "texts": ["...", ...]}
//   - 响应 {"embeddings": [[...], ...]}，向量与输入文本按位对应
//   - 固定模型版本下编码结果确定
//
// 工程特征：
//   - 批量编码：一次请求编码多条文本，片库冷启动时按批调用
//   - 失败直接向上传播：此层不重试，避免掩盖模型服务的系统性故障
type STEncoderClient struct {
	// Endpoint 服务端点，如 "http://localhost:8088"
	Endpoint string

	// ModelName 模型名称，如 "all-MiniLM-L6-v2"
	ModelName string

	// Timeout 超时时间
	Timeout time.Duration

	// APIKey 认证令牌（可选，置于 Authorization: Bearer 头）
	APIKey string

	httpClient *http.Client
}

// STEncoderOption 编码客户端配置选项
type STEncoderOption func(*STEncoderClient)

// WithSTEncoderTimeout 设置超时时间
func WithSTEncoderTimeout(timeout time.Duration) STEncoderOption {
	return func(c *STEncoderClient) {
		c.Timeout = timeout
	}
}

// WithSTEncoderAPIKey 设置认证令牌
func WithSTEncoderAPIKey(key string) STEncoderOption {
	return func(c *STEncoderClient) {
		c.APIKey = key
	}
}

// NewSTEncoderClient 创建一个新的编码服务客户端。
func NewSTEncoderClient(endpoint, modelName string, opts ...STEncoderOption) *STEncoderClient {
	client := &STEncoderClient{
		Endpoint:  endpoint,
		ModelName: modelName,
		Timeout:   30 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.httpClient = &http.Client{
		Timeout: client.Timeout,
	}

	return client
}

type encodeRequest struct {
	Model string   `json:"model,omitempty"`
	Texts []string `json:"texts"`
}

type encodeResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// EncodeTexts 实现 core.TextEncoder 接口。
func (c *STEncoderClient) EncodeTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	body, err := json.Marshal(&encodeRequest{
		Model: c.ModelName,
		Texts: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/encode", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build encode request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call encoder service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read encoder response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, core.NewDomainError(core.ModuleEncoder, core.ErrorCodeUnavailable,
			fmt.Sprintf("encoder service returned %d: %s", resp.StatusCode, truncate(string(raw), 200)))
	}

	var out encodeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse encoder response: %w", err)
	}

	if len(out.Embeddings) != len(texts) {
		return nil, core.NewDomainError(core.ModuleEncoder, core.ErrorCodeInternalError,
			fmt.Sprintf("vector count mismatch: expected %d, got %d", len(texts), len(out.Embeddings)))
	}

	return out.Embeddings, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ core.TextEncoder = (*STEncoderClient)(nil)
