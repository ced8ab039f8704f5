package rerank

import (
	"context"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
)

// Diversity 是一个简单的多样性重排节点：按首类型去重（保留每个类型首次出现的影片）。
// 用于避免 TopK 被单一类型刷屏，通常放在 TopN 截断之前。
type Diversity struct {
	// MaxPerGenre 同一首类型最多保留的影片数（<=0 时默认 1）
	MaxPerGenre int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	limit := n.MaxPerGenre
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 32)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		// 无类型信息的影片不参与去重
		if len(it.Genres) == 0 {
			out = append(out, it)
			continue
		}

		genre := it.Genres[0]
		if seen[genre] >= limit {
			continue
		}
		seen[genre]++
		out = append(out, it)
	}

	return out, nil
}

var _ pipeline.Node = (*Diversity)(nil)
