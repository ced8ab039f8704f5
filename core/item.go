package core

import "github.com/rushteam/cinerec/pkg/utils"

// Item 是推荐链路中的统一承载结构：影片标识、分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	// Index 影片在片库中的位置（与 Film.Index 一致）
	Index int

	// Title 影片标题
	Title string

	// Genres 影片类型列表
	Genres []string

	// Score 当前阶段的分数（召回阶段为余弦相似度，排序阶段叠加加分项）
	Score float64

	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewItem(index int) *Item {
	return &Item{
		Index:  index,
		Score:  0,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
