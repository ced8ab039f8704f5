package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/cinerec/core"
)

// CSV 加载层：演员表与影片表均为带表头的 CSV。
// 列名按表头匹配（大小写不敏感、去空白），兼容导出工具的列序差异。
// 单行解析失败时退化为空字段，不中断整批加载。

// LoadActorsCSV 从 CSV 文件加载演员表。
// 需要的列：ID 列（列名包含 "const" 或为 "id"）、名字列（列名包含 "name"）。
func LoadActorsCSV(path string) ([]core.Actor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open actors csv: %w", err)
	}
	defer f.Close()
	return ReadActors(f)
}

// ReadActors 从 r 读取演员表。
func ReadActors(r io.Reader) ([]core.Actor, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read actors header: %w", err)
	}

	idCol := findColumn(header, func(name string) bool {
		return strings.Contains(name, "const") || name == "id"
	})
	nameCol := findColumn(header, func(name string) bool {
		return strings.Contains(name, "name")
	})
	if idCol < 0 || nameCol < 0 {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
			"catalog: actors csv missing id or name column")
	}

	var actors []core.Actor
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 行级错误：跳过该行，继续加载
			continue
		}
		if idCol >= len(record) || nameCol >= len(record) {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[idCol]))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(record[nameCol])
		if name == "" {
			continue
		}
		actors = append(actors, core.Actor{ID: id, Name: name})
	}
	return actors, nil
}

// LoadFilmsCSV 从 CSV 文件加载影片表。
// 需要的列：title / genres / director / cast（按表头匹配）。
func LoadFilmsCSV(path string) ([]FilmRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open films csv: %w", err)
	}
	defer f.Close()
	return ReadFilms(f)
}

// ReadFilms 从 r 读取影片表。
func ReadFilms(r io.Reader) ([]FilmRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read films header: %w", err)
	}

	titleCol := findColumn(header, func(name string) bool { return strings.Contains(name, "title") })
	genresCol := findColumn(header, func(name string) bool { return strings.Contains(name, "genre") })
	directorCol := findColumn(header, func(name string) bool { return strings.Contains(name, "director") })
	castCol := findColumn(header, func(name string) bool { return strings.Contains(name, "cast") })
	if titleCol < 0 {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
			"catalog: films csv missing title column")
	}

	var rows []FilmRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		rows = append(rows, FilmRow{
			Title:    fieldAt(record, titleCol),
			Genres:   fieldAt(record, genresCol),
			Director: fieldAt(record, directorCol),
			Cast:     fieldAt(record, castCol),
		})
	}
	return rows, nil
}

// findColumn 在表头中查找满足条件的列，返回下标；找不到时返回 -1。
func findColumn(header []string, match func(string) bool) int {
	for i, h := range header {
		if match(strings.ToLower(strings.TrimSpace(h))) {
			return i
		}
	}
	return -1
}

// fieldAt 返回 record 第 i 列的值；列不存在时返回空串（字段缺失退化为空）。
func fieldAt(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
