package core

// RecommendContext 承载一次推荐请求的全部输入与中间产物，贯穿整个 Pipeline 透传。
// 请求级结构：每次调用独立分配，调用结束即丢弃，并发请求之间不共享。
type RecommendContext struct {
	// LikedActors 用户喜欢的演员名列表（有序；重复项语义上冗余但允许）
	LikedActors []string

	// DislikedActors 用户不喜欢的演员名列表（应为偏差修正之后的列表）
	DislikedActors []string

	// Weights 本次请求的评分权重；零值表示使用默认权重
	Weights Weights

	// TopK 返回的推荐数量；超过片库大小时返回全部
	TopK int

	// Query 偏好查询（由召回节点通过 pref.Builder 构建后写入，
	// 供排序节点读取加分项；请求级数据，不跨请求复用）
	Query *PreferenceQuery

	// Params 请求级上下文参数（可选）
	Params map[string]any
}

// PreferenceQuery 是偏好向量构建的产物：一个组合查询向量加上逐片加分依据。
type PreferenceQuery struct {
	// Vector 组合查询向量：
	// w.liked·likeVec − w.disliked·dislikeVec + w.directors·directorsVec + w.genres·genresVec
	Vector []float64

	// BonusDirectors 喜欢的演员合作过的导演集合
	BonusDirectors map[string]bool

	// GenreDistribution 喜欢的演员出演影片的类型频率分布（已归一化）
	GenreDistribution map[string]float64

	// Neutral 为 true 表示无任何偏好、使用了中性回退查询，
	// 此时 BonusDirectors / GenreDistribution 为空，排序阶段不叠加加分
	Neutral bool
}
