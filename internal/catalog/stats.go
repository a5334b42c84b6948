package catalog

import (
	"unicode/utf8"

	"github.com/John-Robertt/MCAT/internal/domain"
)

// CountByDirector 返回导演匹配（大小写不敏感）的记录数。
func (s *Store) CountByDirector(director string) int {
	n := 0
	for _, r := range s.recs {
		if domain.FoldEqual(r.Director, director) {
			n++
		}
	}
	return n
}

// LongestTitle 返回标题最长（按字符数计）的记录标题。
// 并列时取集合顺序首条；空集合返回 ok=false。
func (s *Store) LongestTitle() (string, bool) {
	if len(s.recs) == 0 {
		return "", false
	}
	best := s.recs[0].Title
	bestN := utf8.RuneCountInString(best)
	for _, r := range s.recs[1:] {
		if n := utf8.RuneCountInString(r.Title); n > bestN {
			best, bestN = r.Title, n
		}
	}
	return best, true
}

// OldestTitle 返回年份最小的记录标题。
// 并列时取集合顺序首条；空集合返回 ok=false。
func (s *Store) OldestTitle() (string, bool) {
	if len(s.recs) == 0 {
		return "", false
	}
	best := s.recs[0]
	for _, r := range s.recs[1:] {
		if r.Year < best.Year {
			best = r
		}
	}
	return best.Title, true
}

// AverageYear 返回全部年份的算术平均值。
// 空集合返回 0：这是对外约定（语义上未定义，但不是错误）。
func (s *Store) AverageYear() float64 {
	if len(s.recs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range s.recs {
		sum += r.Year
	}
	return float64(sum) / float64(len(s.recs))
}

// MostCommonYear 返回出现次数最多的年份。
// 并列时取“在集合顺序中先达到最大计数”的年份（每次运行结果一致，不依赖 map 遍历顺序）；
// 空集合返回 ok=false。
func (s *Store) MostCommonYear() (int, bool) {
	if len(s.recs) == 0 {
		return 0, false
	}
	counts := make(map[int]int, len(s.recs))
	best, bestN := 0, 0
	for _, r := range s.recs {
		counts[r.Year]++
		if counts[r.Year] > bestN {
			best, bestN = r.Year, counts[r.Year]
		}
	}
	return best, true
}
