// Package pref 负责把原始偏好信号（喜欢/不喜欢的演员名列表）
// 转换为一个加权查询向量加上逐片加分依据，以及在此之前的偏差修正。
package pref

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rushteam/cinerec/catalog"
	"github.com/rushteam/cinerec/core"
)

// NeutralQuery 是无任何偏好时的中性回退查询文本。
// 零向量的余弦相似度处处为零（退化），所以空偏好请求改用一条固定的中性查询，
// 保证仍能返回确定的、非退化的 TopK。
const NeutralQuery = "generic movie query"

// Builder 是偏好向量构建器。
// 依赖片库索引（查找表）与外部文本编码服务；自身无状态，可并发使用，
// 每次 Build 的所有中间结构都是请求级的。
type Builder struct {
	Catalog *catalog.Catalog
	Encoder core.TextEncoder
}

// Build 根据（喜欢, 不喜欢, 权重）构建偏好查询。
//
// 产物：
//   - 组合查询向量 = w.liked·likeVec − w.disliked·dislikeVec + w.directors·directorsVec + w.genres·genresVec
//     （对不喜欢的演员做减法是有意为之：把查询主动推离相似影片，而不只是不奖励）
//   - BonusDirectors：喜欢的演员合作过的导演并集
//   - GenreDistribution：喜欢的演员出演类型的归一化频率分布
//
// 两个列表都为空时走中性回退（见 NeutralQuery）。
// 编码服务的失败原样向上传播。
func (b *Builder) Build(ctx context.Context, liked, disliked []string, w core.Weights) (*core.PreferenceQuery, error) {
	if len(liked) == 0 && len(disliked) == 0 {
		vecs, err := b.Encoder.EncodeTexts(ctx, []string{NeutralQuery})
		if err != nil {
			return nil, fmt.Errorf("encode neutral query: %w", err)
		}
		if len(vecs) != 1 {
			return nil, core.NewDomainError(core.ModuleEncoder, core.ErrorCodeInternalError,
				fmt.Sprintf("encoder returned %d vectors for neutral query", len(vecs)))
		}
		return &core.PreferenceQuery{
			Vector:            vecs[0],
			BonusDirectors:    map[string]bool{},
			GenreDistribution: map[string]float64{},
			Neutral:           true,
		}, nil
	}

	bonusDirectors := b.collectDirectors(liked)
	genreDistribution, genreOrder := b.collectGenres(liked)

	// 合成四条查询语句；为空的成分不编码，对应零向量
	likeText := joinNames(liked)
	dislikeText := joinNames(disliked)
	directorsText := joinDirectors(bonusDirectors)
	genresText := strings.Join(genreOrder, ", ")

	sentences := []string{
		sentenceOrEmpty("Movies featuring actors like %s.", likeText),
		sentenceOrEmpty("Movies featuring actors like %s.", dislikeText),
		sentenceOrEmpty("Movies directed by %s.", directorsText),
		sentenceOrEmpty("Movies in genres like %s.", genresText),
	}

	parts, err := b.encodeSentences(ctx, sentences)
	if err != nil {
		return nil, err
	}

	combined := combine(parts, []float64{
		w.LikedActors,
		-w.DislikedActors,
		w.Directors,
		w.Genres,
	})

	return &core.PreferenceQuery{
		Vector:            combined,
		BonusDirectors:    bonusDirectors,
		GenreDistribution: genreDistribution,
	}, nil
}

// collectDirectors 取喜欢的演员合作过的导演并集。
func (b *Builder) collectDirectors(liked []string) map[string]bool {
	out := make(map[string]bool)
	for _, actor := range liked {
		for d := range b.Catalog.DirectorsOf(actor) {
			out[d] = true
		}
	}
	return out
}

// collectGenres 统计喜欢的演员出演类型的频率并归一化。
// 同时返回类型的首次出现顺序，保证合成语句的确定性。
// 总数为零（无喜欢的演员或均不在映射中）时分布为空，不报错。
func (b *Builder) collectGenres(liked []string) (map[string]float64, []string) {
	counts := make(map[string]int)
	var order []string
	total := 0
	for _, actor := range liked {
		for _, g := range b.Catalog.GenresOf(actor) {
			if _, seen := counts[g]; !seen {
				order = append(order, g)
			}
			counts[g]++
			total++
		}
	}

	dist := make(map[string]float64, len(counts))
	if total == 0 {
		return dist, nil
	}
	for g, n := range counts {
		dist[g] = float64(n) / float64(total)
	}
	return dist, order
}

// encodeSentences 把非空语句合并为一次批量编码调用，再按位还原；
// 空语句对应 nil（调用方按零向量处理）。
func (b *Builder) encodeSentences(ctx context.Context, sentences []string) ([][]float64, error) {
	texts := make([]string, 0, len(sentences))
	pos := make([]int, 0, len(sentences))
	for i, s := range sentences {
		if s != "" {
			texts = append(texts, s)
			pos = append(pos, i)
		}
	}

	vecs, err := b.Encoder.EncodeTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("encode preference queries: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, core.NewDomainError(core.ModuleEncoder, core.ErrorCodeInternalError,
			fmt.Sprintf("encoder returned %d vectors for %d texts", len(vecs), len(texts)))
	}

	parts := make([][]float64, len(sentences))
	for i, p := range pos {
		parts[p] = vecs[i]
	}
	return parts, nil
}

// combine 按权重线性组合各成分；nil 成分视为零向量。
func combine(parts [][]float64, weights []float64) []float64 {
	dim := 0
	for _, p := range parts {
		if len(p) > 0 {
			dim = len(p)
			break
		}
	}

	out := make([]float64, dim)
	for i, p := range parts {
		if len(p) == 0 {
			continue
		}
		w := weights[i]
		for j := range p {
			out[j] += w * p[j]
		}
	}
	return out
}

// joinNames 把名字列表合成逗号分隔文本；空列表得到空串。
func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

// joinDirectors 把导演集合按字典序合成文本（集合无序，排序保证确定性）。
func joinDirectors(set map[string]bool) string {
	if len(set) == 0 {
		return ""
	}
	names := make([]string, 0, len(set))
	for d := range set {
		names = append(names, d)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// sentenceOrEmpty 在内容非空时套用语句模板，否则返回空串。
func sentenceOrEmpty(format, content string) string {
	if content == "" {
		return ""
	}
	return fmt.Sprintf(format, content)
}
