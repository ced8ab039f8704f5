// Package rank 提供排序节点：在召回相似度之上叠加类别加分项并排序。
package rank

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/cinerec/core"
	"github.com/rushteam/cinerec/pipeline"
	"github.com/rushteam/cinerec/pkg/utils"
	"github.com/rushteam/cinerec/vector"
)

// DirectorBonus 是导演命中加分的固定值（手工调参）。
const DirectorBonus = 0.1

// BonusRank 把召回阶段的相似度分与类别加分合并为最终分，并按分数降序排序。
//
// 逐片加分：
//   - 影片每个类型累加该类型在偏好分布中的频率值
//   - 影片任一导演命中 BonusDirectors 集合时一次性加 DirectorBonus
//
// 最终分 = 相似度 + w.BonusGenreDirector · 加分。
// 排序使用稳定排序：同分影片保持片库加载顺序，不被任意重排。
type BonusRank struct {
	Index *vector.Index
}

func (n *BonusRank) Name() string {
	return "rank.bonus"
}

func (n *BonusRank) Kind() pipeline.Kind {
	return pipeline.KindRank
}

func (n *BonusRank) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	query := rctx.Query

	if query != nil && !query.Neutral {
		for _, it := range items {
			bonus := n.bonusFor(it.Index, query)
			if bonus == 0 {
				continue
			}
			it.Score += rctx.Weights.BonusGenreDirector * bonus
			it.PutLabel("rank_bonus", utils.Label{
				Value:  strconv.FormatFloat(bonus, 'f', 4, 64),
				Source: "rank",
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}

// bonusFor 计算第 index 部影片的类别加分。
func (n *BonusRank) bonusFor(index int, query *core.PreferenceQuery) float64 {
	film := n.Index.Entry(index).Film

	var bonus float64
	for _, g := range film.Genres {
		bonus += query.GenreDistribution[g]
	}
	for _, d := range film.Directors {
		if query.BonusDirectors[d] {
			bonus += DirectorBonus
			break
		}
	}
	return bonus
}

var _ pipeline.Node = (*BonusRank)(nil)
