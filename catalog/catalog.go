// Package catalog 负责片库索引：加载并规整影片/演员数据，
// 构建 演员→导演、演员→类型 的查找表。
// 所有结构在进程初始化时构建一次，之后只读，可被任意并发读取。
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rushteam/cinerec/core"
)

// FilmRow 是影片表的一行原始数据（未解析）。
type FilmRow struct {
	Title    string
	Genres   string // 逗号分隔，可为空
	Director string // 逗号分隔，可为空（部分影片有多位导演）
	Cast     string // 形如 "[103,101,102]" 的演员 ID 列表字符串
}

// Catalog 是片库索引。构建完成后不可变。
type Catalog struct {
	films      []core.Film
	actorNames []string       // 演员表顺序的全部演员名
	actorIDs   map[int]string // 演员 ID → 名字

	actorDirectors map[string]map[string]bool // 演员名 → 合作过的导演集合（去重）
	actorGenres    map[string][]string        // 演员名 → 出演影片类型多重集（保留重复，驱动频率分布）
}

// Build 根据演员表与影片表构建片库索引。
// 单行数据不合法时该字段退化为空，绝不让整批加载失败。
func Build(actors []core.Actor, rows []FilmRow) *Catalog {
	c := &Catalog{
		films:          make([]core.Film, 0, len(rows)),
		actorNames:     make([]string, 0, len(actors)),
		actorIDs:       make(map[int]string, len(actors)),
		actorDirectors: make(map[string]map[string]bool),
		actorGenres:    make(map[string][]string),
	}

	for _, a := range actors {
		c.actorIDs[a.ID] = a.Name
		c.actorNames = append(c.actorNames, a.Name)
	}

	for i, row := range rows {
		film := core.Film{
			Index:     i,
			Title:     row.Title,
			Genres:    splitList(row.Genres),
			Directors: splitList(row.Director),
			Cast:      ParseCast(row.Cast, c.actorIDs),
		}
		c.films = append(c.films, film)

		// 建立 演员→导演 / 演员→类型 映射
		for _, actor := range film.Cast {
			for _, d := range film.Directors {
				if c.actorDirectors[actor] == nil {
					c.actorDirectors[actor] = make(map[string]bool)
				}
				c.actorDirectors[actor][d] = true
			}
			c.actorGenres[actor] = append(c.actorGenres[actor], film.Genres...)
		}
	}

	return c
}

// ParseCast 将 "[103,101,102]" 形式的演员 ID 列表解析为可读名字列表。
// 顺序与输入 ID 一致；未知 ID 被静默丢弃；整体不可解析时返回空列表而非报错。
func ParseCast(castStr string, actorIDs map[int]string) []string {
	s := strings.TrimSpace(castStr)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return []string{}
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []string{}
	}

	parts := strings.Split(inner, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			// 任一片段不合法即视为整体不可解析
			return []string{}
		}
		ids = append(ids, id)
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := actorIDs[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Films 返回全部影片（加载顺序即 Index 顺序，调用方不得修改）。
func (c *Catalog) Films() []core.Film {
	return c.films
}

// Len 返回片库大小。
func (c *Catalog) Len() int {
	return len(c.films)
}

// ActorNames 返回演员表顺序的全部演员名（调用方不得修改）。
func (c *Catalog) ActorNames() []string {
	return c.actorNames
}

// ActorAt 返回第 i 个演员名。
// 越界属于调用方契约违规，必须显式报错而非静默截断。
func (c *Catalog) ActorAt(i int) (string, error) {
	if i < 0 || i >= len(c.actorNames) {
		return "", core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
			fmt.Sprintf("catalog: actor index %d out of range [0, %d)", i, len(c.actorNames)))
	}
	return c.actorNames[i], nil
}

// DirectorsOf 返回演员合作过的导演集合；演员未知时返回 nil。
func (c *Catalog) DirectorsOf(actor string) map[string]bool {
	return c.actorDirectors[actor]
}

// GenresOf 返回演员出演影片的类型多重集（保留重复）；演员未知时返回 nil。
func (c *Catalog) GenresOf(actor string) []string {
	return c.actorGenres[actor]
}

// splitList 按逗号切分并去空白，丢弃空片段。空串（字段缺失）得到空列表。
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
