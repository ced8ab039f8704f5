package config

import (
	"fmt"

	"github.com/rushteam/cinerec/filter"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/conv"
	"github.com/rushteam/cinerec/rerank"
)

// 内置 Node 的构建器注册。
// 需要召回/排序节点的场景由 engine 直接组装（它们依赖片库索引，无法由纯配置构建）。

func init() {
	Register("filter.expr", buildExprFilterNode)
	Register("rerank.topn", buildTopNNode)
	Register("rerank.diversity", buildDiversityNode)
}

func buildExprFilterNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet[string](cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr not found")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
}

func buildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}

func buildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{MaxPerGenre: conv.ConfigGetInt(cfg, "max_per_genre", 1)}, nil
}
