// Package vector 实现影片 Embedding 索引：为每部影片预计算一个描述向量，
// 并提供针对整个矩阵的余弦相似度查询。
package vector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/store"
)

// Entry 把影片与其 Embedding 向量成对绑定在同一条目中。
// 影片与向量只通过 Entry 同进同出，位置对齐由结构保证，
// 不存在两份独立集合被分别过滤/重排而失配的可能。
type Entry struct {
	Film   core.Film
	Vector []float64
}

// Index 是片库的 Embedding 索引。构建一次，之后只读，可无限并发查询。
type Index struct {
	entries []Entry
	dim     int
}

// Option 是 Build 的配置选项。
type Option func(*builder)

type builder struct {
	store       store.Store
	modelID     string
	cacheTTL    int
	batchSize   int
	concurrency int
}

// WithStore 启用 Embedding 缓存：已编码过的描述直接命中 Store，跳过编码服务。
// modelID 参与缓存 key，模型升级后旧缓存自然失效。
func WithStore(s store.Store, modelID string) Option {
	return func(b *builder) {
		b.store = s
		b.modelID = modelID
	}
}

// WithCacheTTL 设置缓存过期时间（秒，0 表示不过期）。
func WithCacheTTL(seconds int) Option {
	return func(b *builder) { b.cacheTTL = seconds }
}

// WithBatchSize 设置单次编码请求的文本数量上限（默认 64）。
func WithBatchSize(n int) Option {
	return func(b *builder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithConcurrency 设置并发编码的批次数上限（默认 4）。
func WithConcurrency(n int) Option {
	return func(b *builder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// Build 为片库中每部影片编码一个描述向量，构建索引。
// 编码按批并发执行；编码服务的失败直接向上传播，不做重试。
func Build(ctx context.Context, cat *catalog.Catalog, encoder core.TextEncoder, opts ...Option) (*Index, error) {
	b := &builder{batchSize: 64, concurrency: 4}
	for _, opt := range opts {
		opt(b)
	}

	films := cat.Films()
	descs := make([]string, len(films))
	for i := range films {
		descs[i] = films[i].Description()
	}

	vectors := make([][]float64, len(films))

	// 先查缓存，只对未命中的描述调用编码服务
	missing := make([]int, 0, len(films))
	if b.store != nil {
		keys := make([]string, len(descs))
		for i, d := range descs {
			keys[i] = cacheKey(b.modelID, d)
		}
		cached, err := b.store.BatchGet(ctx, keys)
		if err != nil {
			// 缓存读失败不致命：全部走编码服务
			cached = nil
		}
		for i, k := range keys {
			raw, ok := cached[k]
			if !ok {
				missing = append(missing, i)
				continue
			}
			var vec []float64
			if err := json.Unmarshal(raw, &vec); err != nil || len(vec) == 0 {
				missing = append(missing, i)
				continue
			}
			vectors[i] = vec
		}
	} else {
		for i := range descs {
			missing = append(missing, i)
		}
	}

	if err := b.encodeMissing(ctx, encoder, descs, vectors, missing); err != nil {
		return nil, err
	}

	// 校验维度一致并组装条目
	idx := &Index{entries: make([]Entry, len(films))}
	for i := range films {
		vec := vectors[i]
		if len(vec) == 0 {
			return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInternalError,
				fmt.Sprintf("vector: missing embedding for film %d", i))
		}
		if idx.dim == 0 {
			idx.dim = len(vec)
		} else if len(vec) != idx.dim {
			return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInternalError,
				fmt.Sprintf("vector: dimension mismatch at film %d: got %d, want %d", i, len(vec), idx.dim))
		}
		idx.entries[i] = Entry{Film: films[i], Vector: vec}
	}
	return idx, nil
}

// encodeMissing 对缓存未命中的描述按批并发编码，结果写回 vectors 并回填缓存。
// 各批写入的下标互不相交，无需加锁。
func (b *builder) encodeMissing(ctx context.Context, encoder core.TextEncoder, descs []string, vectors [][]float64, missing []int) error {
	if len(missing) == 0 {
		return nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.concurrency)

	for start := 0; start < len(missing); start += b.batchSize {
		end := start + b.batchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[start:end]

		eg.Go(func() error {
			texts := make([]string, len(batch))
			for i, idx := range batch {
				texts[i] = descs[idx]
			}
			vecs, err := encoder.EncodeTexts(egCtx, texts)
			if err != nil {
				return fmt.Errorf("encode films %d..%d: %w", batch[0], batch[len(batch)-1], err)
			}
			if len(vecs) != len(texts) {
				return core.NewDomainError(core.ModuleVector, core.ErrorCodeInternalError,
					fmt.Sprintf("vector: encoder returned %d vectors for %d texts", len(vecs), len(texts)))
			}
			for i, idx := range batch {
				vectors[idx] = vecs[i]
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	// 写缓存为尽力而为：失败只影响下次冷启动速度
	if b.store != nil {
		kvs := make(map[string][]byte, len(missing))
		for _, idx := range missing {
			raw, err := json.Marshal(vectors[idx])
			if err != nil {
				continue
			}
			kvs[cacheKey(b.modelID, descs[idx])] = raw
		}
		_ = b.store.BatchSet(ctx, kvs, b.cacheTTL)
	}
	return nil
}

// Similarity 计算查询向量与每部影片向量的余弦相似度。
// 返回切片长度等于片库大小，下标即影片 Index——位置对齐是评分正确性的前提。
func (idx *Index) Similarity(query []float64) []float64 {
	scores := make([]float64, len(idx.entries))
	for i := range idx.entries {
		scores[i] = cosineSimilarity(query, idx.entries[i].Vector)
	}
	return scores
}

// Len 返回索引中的影片数量。
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Dim 返回向量维度。
func (idx *Index) Dim() int {
	return idx.dim
}

// Entry 返回第 i 个条目（影片与向量成对）。
func (idx *Index) Entry(i int) Entry {
	return idx.entries[i]
}

// cacheKey 由模型标识与描述文本生成缓存 key。
func cacheKey(modelID, desc string) string {
	sum := sha256.Sum256([]byte(desc))
	return "cinerec:emb:" + modelID + ":" + hex.EncodeToString(sum[:])
}

// cosineSimilarity 计算余弦相似度。
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
