package pref

import "math/rand"

// CorrectBias 对不喜欢列表做偏差修正：按 dropFraction 比例随机丢弃一部分条目。
//
// 动机：用户划掉演员往往只是"不认识"，而不是真的讨厌其作品；
// 负向信号噪声偏大，全量采信会过度惩罚。这是启发式降噪，不是正确性要求，
// 随机丢弃意味着同样输入的多次调用不保证得到同一结果。
//
// 行为：
//   - 丢弃数量 n = floor(len(list) · dropFraction)，n 被限制在 [0, len] 内
//   - 被丢弃的条目等概率、不放回地选取
//   - 保留条目维持输入顺序，不重排
//   - 空列表原样返回（no-op，不是错误）
//
// rng 由调用方注入以便测试中固定种子；传 nil 时使用全局随机源。
func CorrectBias(list []string, dropFraction float64, rng *rand.Rand) []string {
	if len(list) == 0 {
		return []string{}
	}

	n := int(float64(len(list)) * dropFraction)
	if n <= 0 {
		out := make([]string, len(list))
		copy(out, list)
		return out
	}
	if n >= len(list) {
		return []string{}
	}

	perm := permutation(len(list), rng)
	drop := make(map[int]bool, n)
	for _, i := range perm[:n] {
		drop[i] = true
	}

	out := make([]string, 0, len(list)-n)
	for i, v := range list {
		if !drop[i] {
			out = append(out, v)
		}
	}
	return out
}

func permutation(n int, rng *rand.Rand) []int {
	if rng != nil {
		return rng.Perm(n)
	}
	return rand.Perm(n)
}
