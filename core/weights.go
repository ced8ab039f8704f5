package core

// Weights 是评分权重配置：五个命名乘数，固定结构。
// 使用固定字段而非 map[string]float64，避免 key 写错被静默当作 0 的问题。
//
// 约定均为非负；负值不会被拒绝，但会反转语义（调用方自担）。
type Weights struct {
	// LikedActors 喜欢演员查询向量的权重
	LikedActors float64 `yaml:"liked_actors" json:"liked_actors"`

	// DislikedActors 不喜欢演员查询向量的权重（组合时做减法，主动推远）
	DislikedActors float64 `yaml:"disliked_actors" json:"disliked_actors"`

	// Genres 类型查询向量的权重
	Genres float64 `yaml:"genres" json:"genres"`

	// Directors 导演查询向量的权重
	Directors float64 `yaml:"directors" json:"directors"`

	// BonusGenreDirector 类型/导演加分项对最终分数的影响程度
	BonusGenreDirector float64 `yaml:"bonus_genre_director" json:"bonus_genre_director"`
}

// DefaultWeights 返回默认权重。
// 数值经手工调参：喜欢的演员信号最强，其次是不喜欢、类型、导演。
func DefaultWeights() Weights {
	return Weights{
		LikedActors:        1.2,
		DislikedActors:     1.0,
		Genres:             0.8,
		Directors:          0.6,
		BonusGenreDirector: 0.5,
	}
}

// IsZero 判断是否为零值配置（常用于"未指定则取默认"的场景）。
func (w Weights) IsZero() bool {
	return w == Weights{}
}
