package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

// 场景：从既有目录文件加载后做查询（对应最小对外契约）。
func TestQueries_FromExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	content := `[{"title":"A","director":"X","year":1999,"genres":["drama"]}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open 失败：%v", err)
	}
	if s.Count() != 1 {
		t.Fatalf("期望 1 条，实际 %d", s.Count())
	}

	got := s.FilterByGenre("Drama")
	if len(got) != 1 || got[0].Title != "A" {
		t.Fatalf("类型匹配应大小写不敏感：%v", got)
	}

	titles := s.TitlesBetween(1990, 2000)
	if len(titles) != 1 || titles[0] != "A" {
		t.Fatalf("TitlesBetween(1990,2000) 应命中：%v", titles)
	}
	if titles := s.TitlesBetween(2001, 2005); len(titles) != 0 {
		t.Fatalf("TitlesBetween(2001,2005) 应为空：%v", titles)
	}
}

func TestFilterTitleContains_CaseSensitiveSubstring(t *testing.T) {
	s := newStore(t)
	mustAdd(t, s, "A", "X", 1999, []string{"drama"})
	added := mustAdd(t, s, "B", "Y", 2001, []string{"comedy", "drama"})

	got := s.FilterTitleContains("B")
	if len(got) != 1 || got[0].ID != added.ID {
		t.Fatalf("子串过滤应恰好命中新增记录：%v", got)
	}

	// 大小写敏感：小写 b 不命中。
	if got := s.FilterTitleContains("b"); len(got) != 0 {
		t.Fatalf("子串匹配必须大小写敏感：%v", got)
	}

	// 空子串命中全部（strings.Contains 的自然语义，沿用）。
	if got := s.FilterTitleContains(""); len(got) != 2 {
		t.Fatalf("空子串应命中全部：%v", got)
	}
}

func TestFilterByDirector_FoldEqualNotSubstring(t *testing.T) {
	s := newStore(t)
	mustAdd(t, s, "B", "Y", 2001, nil)
	mustAdd(t, s, "C", "Yates", 2007, nil)

	got := s.FilterByDirector("y")
	if len(got) != 1 || got[0].Title != "B" {
		t.Fatalf("导演匹配是整串相等（大小写不敏感），不是子串：%v", got)
	}
	if n := s.CountByDirector("y"); n != 1 {
		t.Fatalf("CountByDirector(\"y\") 期望 1，实际 %d", n)
	}
}

func TestFilterByYear_Exact(t *testing.T) {
	s := newStore(t)
	mustAdd(t, s, "A", "X", 1999, nil)
	mustAdd(t, s, "B", "Y", 2001, nil)
	mustAdd(t, s, "C", "Z", 1999, nil)

	got := s.FilterByYear(1999)
	if len(got) != 2 || got[0].Title != "A" || got[1].Title != "C" {
		t.Fatalf("年份过滤应保持集合顺序：%v", got)
	}
	if got := s.FilterByYear(1998); len(got) != 0 {
		t.Fatalf("不应命中：%v", got)
	}
}

func TestFilterByGenre_TagEqualNotSubstring(t *testing.T) {
	s := newStore(t)
	mustAdd(t, s, "A", "X", 1999, []string{"drama"})
	mustAdd(t, s, "B", "Y", 2001, []string{"melodrama"})
	mustAdd(t, s, "C", "Z", 2003, []string{"Drama", "comedy"})

	got := s.FilterByGenre("DRAMA")
	if len(got) != 2 || got[0].Title != "A" || got[1].Title != "C" {
		t.Fatalf("类型匹配是整标签相等，不是子串：%v", got)
	}
}

func TestTitlesBetween_InclusiveBounds(t *testing.T) {
	s := newStore(t)
	mustAdd(t, s, "A", "X", 1999, nil)
	mustAdd(t, s, "B", "Y", 2001, nil)
	mustAdd(t, s, "C", "Z", 2005, nil)

	got := s.TitlesBetween(1999, 2005)
	if len(got) != 3 {
		t.Fatalf("闭区间两端都应命中：%v", got)
	}
	got = s.TitlesBetween(2000, 2001)
	if len(got) != 1 || got[0] != "B" {
		t.Fatalf("期望只命中 B：%v", got)
	}
}
