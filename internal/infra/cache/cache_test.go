package cache

import (
	"errors"
	"os"
	"testing"
)

func TestStore_ReadWriteProviderCache(t *testing.T) {
	root := t.TempDir()

	s := New(root, false)
	if err := s.WriteProviderHTML("douban", "The Matrix", []byte("<html/>")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, ok, err := s.ReadProviderHTML("douban", "the matrix")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !ok {
		t.Fatalf("期望命中缓存（slug 对大小写不敏感），但 ok=false")
	}
	if string(b) != "<html/>" {
		t.Fatalf("内容不一致：%q", string(b))
	}

	path, err := s.ProviderHTMLPath("douban", "The Matrix")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("期望文件存在，但 Stat 失败：%v", err)
	}
}

func TestStore_ReadWriteProviderPage(t *testing.T) {
	root := t.TempDir()

	s := New(root, false)
	if err := s.WriteProviderPage("douban", "千与千寻", []byte("<html/>"), "https://movie.douban.com/subject/1291561/"); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	html, pageURL, ok, err := s.ReadProviderPage("douban", "千与千寻")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !ok {
		t.Fatalf("期望命中缓存，但 ok=false")
	}
	if string(html) != "<html/>" {
		t.Fatalf("HTML 不一致：%q", string(html))
	}
	if pageURL != "https://movie.douban.com/subject/1291561/" {
		t.Fatalf("pageURL 不一致：%q", pageURL)
	}
}

func TestStore_PageWithoutURLIsMiss(t *testing.T) {
	root := t.TempDir()

	// 只有 HTML、没有 URL：离线重放 Parse 缺少必需输入，必须视为未命中。
	s := New(root, false)
	if err := s.WriteProviderHTML("douban", "Heat", []byte("<html/>")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	_, _, ok, err := s.ReadProviderPage("douban", "Heat")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ok {
		t.Fatalf("缺少 .url 文件不应算命中")
	}
}

func TestStore_WritePageRejectsEmptyURL(t *testing.T) {
	s := New(t.TempDir(), false)
	if err := s.WriteProviderPage("douban", "Heat", []byte("<html/>"), "  "); err == nil {
		t.Fatalf("空 pageURL 应报错")
	}
}

func TestStore_ReadOnlyRejectWrite(t *testing.T) {
	root := t.TempDir()

	s := New(root, true)
	err := s.WriteProviderHTML("imdb", "Heat", []byte("<html/>"))
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("期望 ErrReadOnly，实际：%v", err)
	}
	if err := s.WriteProviderPage("imdb", "Heat", []byte("<html/>"), "https://www.imdb.com/title/tt1/"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("期望 ErrReadOnly，实际：%v", err)
	}

	path, err := s.ProviderHTMLPath("imdb", "Heat")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("期望文件不存在，但 Stat err=%v", err)
	}
}

func TestTitleSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"The Matrix", "the-matrix", true},
		{"  2001: A Space Odyssey ", "2001-a-space-odyssey", true},
		{"千与千寻", "千与千寻", true},
		{"!!!", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, err := TitleSlug(c.in)
		if c.ok && err != nil {
			t.Fatalf("%q：不期望错误：%v", c.in, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("%q：期望错误，但得到 %q", c.in, got)
		}
		if got != c.want {
			t.Fatalf("%q：期望 %q，实际 %q", c.in, c.want, got)
		}
	}
}
