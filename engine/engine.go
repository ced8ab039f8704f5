// Package engine 是推荐引擎的门面：组装片库索引、Embedding 索引与
// Pipeline 节点，对外暴露 Recommend / CorrectBias / RandomActors 三个操作。
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pref"
	"github.com/rushteam/cinerec/rank"
	"github.com/rushteam/cinerec/recall"
	"github.com/rushteam/cinerec/rerank"
	"github.com/rushteam/cinerec/vector"
)

// Recommendation 是单条推荐结果。
type Recommendation struct {
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
	Score  float64  `json:"score"`
}

// Engine 持有进程生命周期内只读的片库与索引，本身可被并发使用；
// 每次 Recommend 组装独立的请求级上下文与节点链，请求之间不共享中间缓冲。
type Engine struct {
	catalog *catalog.Catalog
	index   *vector.Index
	builder *pref.Builder

	// extraNodes 追加在排序节点之后、TopN 截断之前（如表达式过滤、多样性重排）
	extraNodes []pipeline.Node

	mu  sync.Mutex // 保护 rng：math/rand.Rand 非并发安全
	rng *rand.Rand
}

// Option 是 Engine 的配置选项。
type Option func(*Engine)

// WithRand 注入随机源（偏差修正与演员抽样使用），便于测试固定种子。
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithNodes 追加自定义 Pipeline 节点（置于排序之后、截断之前）。
func WithNodes(nodes ...pipeline.Node) Option {
	return func(e *Engine) { e.extraNodes = append(e.extraNodes, nodes...) }
}

// New 创建推荐引擎。
func New(cat *catalog.Catalog, idx *vector.Index, encoder core.TextEncoder, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		index:   idx,
		builder: &pref.Builder{Catalog: cat, Encoder: encoder},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return e
}

// Recommend 对片库评分并返回 TopK 推荐。
//
//   - weights 按原样使用，不做默认值填充（全零权重是合法输入，
//     此时排序退化为片库加载顺序）；默认权重由配置层负责
//   - topK 超过片库大小时返回全部；topK <= 0 同样返回全部
//   - 空偏好不报错：走中性回退查询（见 pref.NeutralQuery）
//   - 编码服务失败作为请求失败向上传播
func (e *Engine) Recommend(ctx context.Context, liked, disliked []string, weights core.Weights, topK int) ([]Recommendation, error) {
	rctx := &core.RecommendContext{
		LikedActors:    liked,
		DislikedActors: disliked,
		Weights:        weights,
		TopK:           topK,
	}

	nodes := make([]pipeline.Node, 0, 3+len(e.extraNodes))
	nodes = append(nodes,
		&recall.EmbeddingRecall{Index: e.index, Builder: e.builder},
		&rank.BonusRank{Index: e.index},
	)
	nodes = append(nodes, e.extraNodes...)
	nodes = append(nodes, &rerank.TopNNode{N: topK})

	p := &pipeline.Pipeline{Nodes: nodes}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, fmt.Errorf("run recommend pipeline: %w", err)
	}

	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		out = append(out, Recommendation{
			Title:  it.Title,
			Genres: it.Genres,
			Score:  it.Score,
		})
	}
	return out, nil
}

// CorrectBias 对不喜欢列表做偏差修正（见 pref.CorrectBias）。
func (e *Engine) CorrectBias(disliked []string, dropFraction float64) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return pref.CorrectBias(disliked, dropFraction, e.rng)
}

// RandomActors 从全部已知演员中等概率、不放回地抽取 n 个演员名。
// n 超过演员总数时返回全部（顺序随机）。
func (e *Engine) RandomActors(n int) []string {
	names := e.catalog.ActorNames()
	if n > len(names) {
		n = len(names)
	}
	if n <= 0 {
		return []string{}
	}

	e.mu.Lock()
	perm := e.rng.Perm(len(names))
	e.mu.Unlock()

	out := make([]string, 0, n)
	for _, i := range perm[:n] {
		out = append(out, names[i])
	}
	return out
}

// ActorAt 返回第 i 个演员名；越界时返回 INVALID_INPUT 错误（不静默截断）。
func (e *Engine) ActorAt(i int) (string, error) {
	return e.catalog.ActorAt(i)
}

// CatalogSize 返回片库大小。
func (e *Engine) CatalogSize() int {
	return e.catalog.Len()
}
