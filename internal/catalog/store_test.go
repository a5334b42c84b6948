package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/John-Robertt/MCAT/internal/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "movies.json"))
	if err != nil {
		t.Fatalf("Open 失败：%v", err)
	}
	return s
}

func mustAdd(t *testing.T, s *Store, title, director string, year int, genres []string) domain.Record {
	t.Helper()
	rec, err := s.Add(title, director, year, genres)
	if err != nil {
		t.Fatalf("Add(%q) 失败：%v", title, err)
	}
	return rec
}

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s := newStore(t)
	if s.Count() != 0 {
		t.Fatalf("期望空集合，实际 %d 条", s.Count())
	}
	// 文件不存在不是错误，也不应被 Open “顺手”创建。
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("期望文件不存在，Stat err=%v", err)
	}
}

func TestOpen_MalformedFile(t *testing.T) {
	cases := map[string]string{
		"非JSON":    "not json at all",
		"非数组":      `{"title":"A"}`,
		"条目类型错误":   `[{"title":"A","director":"X","year":"nineteen","genres":[]}]`,
		"genres错误": `[{"title":"A","director":"X","year":1999,"genres":"drama"}]`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "movies.json")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("写入失败：%v", err)
			}
			_, err := Open(path)
			if err == nil {
				t.Fatalf("期望 FormatError，但得到 nil")
			}
			if !domain.IsFormat(err) {
				t.Fatalf("期望 FormatError，实际：%T %v", err, err)
			}
			if !strings.Contains(err.Error(), path) {
				t.Fatalf("错误信息应包含文件路径，实际：%v", err)
			}
		})
	}
}

func TestRoundTrip_OrderAndFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open 失败：%v", err)
	}

	mustAdd(t, s, "B", "Y", 2001, []string{"comedy", "drama"})
	mustAdd(t, s, "A", "X", 1999, []string{"drama"})
	mustAdd(t, s, "C", "Z", 2010, nil)

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("重新 Open 失败：%v", err)
	}

	want := s.All()
	got := s2.All()
	if len(got) != len(want) {
		t.Fatalf("条数不一致：%d != %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Title != want[i].Title || got[i].Director != want[i].Director || got[i].Year != want[i].Year {
			t.Fatalf("第 %d 条不一致：%+v != %+v", i, got[i], want[i])
		}
		if len(got[i].Genres) != len(want[i].Genres) {
			t.Fatalf("第 %d 条 genres 不一致：%v != %v", i, got[i].Genres, want[i].Genres)
		}
		for j := range want[i].Genres {
			if got[i].Genres[j] != want[i].Genres[j] {
				t.Fatalf("第 %d 条 genres[%d] 不一致：%q != %q", i, j, got[i].Genres[j], want[i].Genres[j])
			}
		}
	}
}

func TestSave_EmptyGenresAsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open 失败：%v", err)
	}
	mustAdd(t, s, "C", "Z", 2010, nil)

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取目录文件失败：%v", err)
	}
	if strings.Contains(string(b), "null") {
		t.Fatalf("空 genres 必须落盘为 []，实际内容：%s", b)
	}
	if !strings.Contains(string(b), `"genres": []`) {
		t.Fatalf("期望 \"genres\": []，实际内容：%s", b)
	}
}

func TestAdd_FindByTitle_CaseInsensitive(t *testing.T) {
	s := newStore(t)
	mustAdd(t, s, "The Matrix", "Wachowski", 1999, []string{"sci-fi"})

	for _, q := range []string{"The Matrix", "the matrix", "THE MATRIX"} {
		rec, ok := s.FindByTitle(q)
		if !ok {
			t.Fatalf("FindByTitle(%q) 未命中", q)
		}
		if rec.Title != "The Matrix" || rec.Director != "Wachowski" || rec.Year != 1999 {
			t.Fatalf("字段不一致：%+v", rec)
		}
	}

	if _, ok := s.FindByTitle("Matrix"); ok {
		t.Fatalf("FindByTitle 是整串匹配，不应命中子串")
	}
}

func TestFindByTitle_UnicodeNormalization(t *testing.T) {
	s := newStore(t)
	// "Amélie"：é 的组合形式（U+00E9）入库，用分解形式（e + U+0301）查询。
	mustAdd(t, s, "Amélie", "Jeunet", 2001, nil)

	if _, ok := s.FindByTitle("Amélie"); !ok {
		t.Fatalf("NFC 归一化后应命中分解形式的同一标题")
	}
}

func TestAdd_AllowsDuplicateTitles_FirstMatchWins(t *testing.T) {
	s := newStore(t)
	first := mustAdd(t, s, "Solaris", "Tarkovsky", 1972, nil)
	second := mustAdd(t, s, "solaris", "Soderbergh", 2002, nil)

	if s.Count() != 2 {
		t.Fatalf("同名记录应允许共存，实际 %d 条", s.Count())
	}

	rec, ok := s.FindByTitle("SOLARIS")
	if !ok || rec.ID != first.ID {
		t.Fatalf("期望命中集合顺序首条（%s），实际 %+v", first.ID, rec)
	}

	// 按 ID 可以精确定位第二条（重名消歧）。
	rec2, ok := s.FindByID(second.ID)
	if !ok || rec2.Director != "Soderbergh" {
		t.Fatalf("FindByID 未命中第二条：%+v", rec2)
	}

	// 删除按首个匹配：剩下的应是第二条。
	removed, err := s.Remove("Solaris")
	if err != nil {
		t.Fatalf("Remove 失败：%v", err)
	}
	if removed.ID != first.ID {
		t.Fatalf("应删除首条，实际删除 %+v", removed)
	}
	left, ok := s.FindByTitle("solaris")
	if !ok || left.ID != second.ID {
		t.Fatalf("剩余记录不对：%+v", left)
	}
}

func TestRemove_DecrementsAndReturnsRecord(t *testing.T) {
	s := newStore(t)
	mustAdd(t, s, "A", "X", 1999, []string{"drama"})
	added := mustAdd(t, s, "B", "Y", 2001, []string{"comedy"})

	removed, err := s.Remove("b")
	if err != nil {
		t.Fatalf("Remove 失败：%v", err)
	}
	if removed.Title != "B" || removed.Director != "Y" || removed.Year != 2001 {
		t.Fatalf("被删记录字段不一致：%+v", removed)
	}
	if removed.ID != added.ID {
		t.Fatalf("被删记录 ID 不一致")
	}
	if s.Count() != 1 {
		t.Fatalf("期望剩 1 条，实际 %d", s.Count())
	}
}

func TestRemoveUpdate_UnknownTitle_NotFound(t *testing.T) {
	s := newStore(t)
	mustAdd(t, s, "A", "X", 1999, nil)

	if _, err := s.Remove("nope"); !domain.IsNotFound(err) {
		t.Fatalf("期望 NotFoundError，实际：%v", err)
	}
	if _, err := s.Update("nope", Patch{Year: 2000}); !domain.IsNotFound(err) {
		t.Fatalf("期望 NotFoundError，实际：%v", err)
	}
	if s.Count() != 1 {
		t.Fatalf("未命中的删除/更新不应改变集合")
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	s := newStore(t)
	mustAdd(t, s, "A", "X", 1999, []string{"drama"})

	got, err := s.Update("a", Patch{Year: 2005})
	if err != nil {
		t.Fatalf("Update 失败：%v", err)
	}
	if got.Year != 2005 {
		t.Fatalf("year 未更新：%+v", got)
	}
	if got.Director != "X" || len(got.Genres) != 1 || got.Genres[0] != "drama" {
		t.Fatalf("未提供的字段不应改变：%+v", got)
	}

	// 零值字段 == 未提供：year=0 不会写入。
	got, err = s.Update("a", Patch{Director: "X2", Year: 0, Genres: nil})
	if err != nil {
		t.Fatalf("Update 失败：%v", err)
	}
	if got.Director != "X2" || got.Year != 2005 || got.Genres[0] != "drama" {
		t.Fatalf("零值字段改变了记录：%+v", got)
	}
}

func TestUpdate_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open 失败：%v", err)
	}
	mustAdd(t, s, "A", "X", 1999, nil)
	if _, err := s.Update("A", Patch{Director: "X2"}); err != nil {
		t.Fatalf("Update 失败：%v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("重新 Open 失败：%v", err)
	}
	rec, ok := s2.FindByTitle("A")
	if !ok || rec.Director != "X2" {
		t.Fatalf("更新未落盘：%+v", rec)
	}
}

func TestAll_ReturnsCopies(t *testing.T) {
	s := newStore(t)
	mustAdd(t, s, "A", "X", 1999, []string{"drama"})

	out := s.All()
	out[0].Title = "mutated"
	out[0].Genres[0] = "mutated"

	rec, _ := s.FindByTitle("A")
	if rec.Title != "A" || rec.Genres[0] != "drama" {
		t.Fatalf("All 的返回值不应与内部状态共享：%+v", rec)
	}
}

func TestTitles_DuplicatesAndOrder(t *testing.T) {
	s := newStore(t)
	mustAdd(t, s, "A", "X", 1999, nil)
	mustAdd(t, s, "B", "Y", 2001, nil)
	mustAdd(t, s, "A", "Z", 2003, nil)

	got := s.Titles()
	want := []string{"A", "B", "A"}
	if len(got) != len(want) {
		t.Fatalf("标题数不一致：%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("顺序/重复不一致：%v", got)
		}
	}
}
