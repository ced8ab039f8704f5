package core

import "strings"

// Actor 是演员表中的一行：数字 ID + 展示名。
// 启动时一次性加载，进程生命周期内不可变。
type Actor struct {
	ID   int
	Name string
}

// Film 是片库中的一部影片。
// 所有字段在加载时解析完成，之后只读；Index 即加载顺序，
// 是影片与其 Embedding 向量之间位置对齐的唯一事实来源。
type Film struct {
	// Index 影片在片库中的位置（加载顺序），加载后不再变化
	Index int

	// Title 影片标题
	Title string

	// Genres 类型列表（按逗号切分、去空白；缺失时为空）
	Genres []string

	// Directors 导演列表（部分影片有多位导演；缺失时为空）
	Directors []string

	// Cast 演职名单（由演员 ID 解析为可读名字；未知 ID 已被丢弃）
	Cast []string
}

// Description 把影片元信息合成为一段描述文本，作为 Embedding 的唯一输入。
// 格式固定："Genres: {genres}. Director: {director}. Actors: {cast}."，
// 缺失字段以空串填充，不省略占位。
func (f *Film) Description() string {
	var b strings.Builder
	b.WriteString("Genres: ")
	b.WriteString(strings.Join(f.Genres, ", "))
	b.WriteString(". Director: ")
	b.WriteString(strings.Join(f.Directors, ", "))
	b.WriteString(". Actors: ")
	b.WriteString(strings.Join(f.Cast, ", "))
	b.WriteString(".")
	return b.String()
}
