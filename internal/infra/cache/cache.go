package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/MCAT/internal/infra/fsx"
)

// Store 提供 <root>/cache/ 下的 provider HTML 缓存读写（root 是目录文件所在目录）。
//
// 约束：
// - dry-run：只允许读（ReadOnly=true）
// - apply：允许写（ReadOnly=false）
type Store struct {
	Root     string
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

// ProviderHTMLPath 返回某标题在某 provider 下的 HTML 缓存绝对路径。
// 标题经 TitleSlug 归一化后作为文件名。
func (s Store) ProviderHTMLPath(provider, title string) (string, error) {
	return s.providerFilePath(provider, title, ".html")
}

func (s Store) providerFilePath(provider, title, ext string) (string, error) {
	p, err := cleanProvider(provider)
	if err != nil {
		return "", err
	}
	slug, err := TitleSlug(title)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Root, "cache", "providers", p, slug+ext), nil
}

func (s Store) ReadProviderHTML(provider, title string) ([]byte, bool, error) {
	path, err := s.ProviderHTMLPath(provider, title)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) WriteProviderHTML(provider, title string, html []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	p, err := cleanProvider(provider)
	if err != nil {
		return err
	}
	slug, err := TitleSlug(title)
	if err != nil {
		return err
	}
	dir := filepath.Join(s.Root, "cache", "providers", p)
	return fsx.WriteFileAtomicReplace(dir, slug+".html", html)
}

// ReadProviderPage 返回缓存的详情页 HTML 及其页面 URL。
// 两个文件都在才算命中：Parse 是纯函数，离线重放必须同时有 html 和 pageURL。
func (s Store) ReadProviderPage(provider, title string) (html []byte, pageURL string, ok bool, err error) {
	html, ok, err = s.ReadProviderHTML(provider, title)
	if err != nil || !ok {
		return nil, "", false, err
	}

	path, err := s.providerFilePath(provider, title, ".url")
	if err != nil {
		return nil, "", false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", false, nil
		}
		return nil, "", false, err
	}
	pageURL = strings.TrimSpace(string(b))
	if pageURL == "" {
		return nil, "", false, nil
	}
	return html, pageURL, true, nil
}

// WriteProviderPage 同时写入 HTML 与页面 URL（<slug>.html / <slug>.url）。
func (s Store) WriteProviderPage(provider, title string, html []byte, pageURL string) error {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return fmt.Errorf("pageURL 不能为空")
	}
	if err := s.WriteProviderHTML(provider, title, html); err != nil {
		return err
	}
	path, err := s.providerFilePath(provider, title, ".url")
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), []byte(pageURL+"\n"))
}

var providerNameRE = regexp.MustCompile(`^[a-z0-9_]+$`)

func cleanProvider(p string) (string, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return "", fmt.Errorf("provider 不能为空")
	}
	// 最小约束：避免路径穿越；provider 名称本身是枚举（douban/imdb），这里不做更多“聪明”处理。
	if !providerNameRE.MatchString(p) {
		return "", fmt.Errorf("非法 provider：%q", p)
	}
	return p, nil
}

var slugDropRE = regexp.MustCompile(`[^a-z0-9\p{Han}]+`)

// TitleSlug 把自由文本标题归一化为可安全做文件名的 slug。
//
// 规则：小写；拉丁字母/数字/汉字保留，其余字符段折叠为单个 '-'；首尾去 '-'。
// 归一化后为空（例如标题全是标点）视为错误：宁可不缓存，也不写出意义不明的文件名。
func TitleSlug(title string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return "", fmt.Errorf("标题不能为空")
	}
	slug := slugDropRE.ReplaceAllString(t, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "", fmt.Errorf("标题无法归一化为文件名：%q", title)
	}
	return slug, nil
}
