package catalog

import (
	"strings"

	"github.com/John-Robertt/MCAT/internal/domain"
)

// 查询口径（各自独立，不要互相“统一”）：
// - 标题子串：大小写敏感、精确子串
// - 导演：大小写不敏感、整串相等
// - 年份：精确相等
// - 类型：大小写不敏感、与某个标签整串相等（不是子串）

// FilterTitleContains 返回标题包含 sub 的全部记录（集合顺序）。
func (s *Store) FilterTitleContains(sub string) []domain.Record {
	out := make([]domain.Record, 0)
	for _, r := range s.recs {
		if strings.Contains(r.Title, sub) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByDirector 返回导演匹配的全部记录（集合顺序）。
func (s *Store) FilterByDirector(director string) []domain.Record {
	out := make([]domain.Record, 0)
	for _, r := range s.recs {
		if domain.FoldEqual(r.Director, director) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByYear 返回年份精确相等的全部记录（集合顺序）。
func (s *Store) FilterByYear(year int) []domain.Record {
	out := make([]domain.Record, 0)
	for _, r := range s.recs {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// FilterByGenre 返回任一类型标签与 genre 匹配的全部记录（集合顺序）。
func (s *Store) FilterByGenre(genre string) []domain.Record {
	out := make([]domain.Record, 0)
	for _, r := range s.recs {
		for _, g := range r.Genres {
			if domain.FoldEqual(g, genre) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// TitlesBetween 返回年份落在 [start, end]（闭区间）内的记录标题（集合顺序）。
func (s *Store) TitlesBetween(start, end int) []string {
	out := make([]string, 0)
	for _, r := range s.recs {
		if r.Year >= start && r.Year <= end {
			out = append(out, r.Title)
		}
	}
	return out
}
