// Package recall 提供召回节点：基于 Embedding 相似度生成带分候选集。
package recall

import (
	"context"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/utils"
	"github.com/rushteam/cinerec/pref"
	"github.com/rushteam/cinerec/vector"
)

// EmbeddingRecall 是基于内容 Embedding 的召回源。
//
// 核心思想："用偏好查询向量对整个片库逐片算余弦相似度"。
// 本系统的片库规模允许全量打分，不做 ANN 近似；
// 产出的候选集按片库加载顺序排列（下标即影片 Index），排序交给后续节点。
//
// 构建出的偏好查询会写入 rctx.Query，供排序节点读取加分依据。
type EmbeddingRecall struct {
	Index   *vector.Index
	Builder *pref.Builder
}

func (r *EmbeddingRecall) Name() string {
	return "recall.embedding"
}

func (r *EmbeddingRecall) Kind() pipeline.Kind {
	return pipeline.KindRecall
}

func (r *EmbeddingRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	query, err := r.Builder.Build(ctx, rctx.LikedActors, rctx.DislikedActors, rctx.Weights)
	if err != nil {
		return nil, err
	}
	rctx.Query = query

	sims := r.Index.Similarity(query.Vector)

	out := make([]*core.Item, 0, len(sims))
	for i, score := range sims {
		entry := r.Index.Entry(i)
		it := core.NewItem(i)
		it.Title = entry.Film.Title
		it.Genres = entry.Film.Genres
		it.Score = score
		it.PutLabel("recall_source", utils.Label{Value: "embedding", Source: "recall"})
		if query.Neutral {
			it.PutLabel("query", utils.Label{Value: "neutral", Source: "recall"})
		}
		out = append(out, it)
	}
	return out, nil
}

var _ pipeline.Node = (*EmbeddingRecall)(nil)
