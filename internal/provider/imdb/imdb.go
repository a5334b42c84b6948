package imdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/MCAT/internal/domain"
	providerx "github.com/John-Robertt/MCAT/internal/provider"
)

// Provider 实现 IMDb 的搜索定位、页面抓取与解析。
//
// 解析策略：详情页内嵌的 JSON-LD（application/ld+json）比 DOM 选择器稳定得多，
// 只认 JSON-LD；缺失就报 parse 失败，让上层走 provider 降级。
type Provider struct{}

func (Provider) Name() string { return "imdb" }

// Fetch 先通过 find 页定位 /title/tt<id>/ 详情页，再抓取详情页。
func (Provider) Fetch(ctx context.Context, title string, c *http.Client) ([]byte, string, error) {
	if c == nil {
		return nil, "", errors.New("http client 不能为空")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, "", errors.New("标题不能为空")
	}

	searchURL := "https://www.imdb.com/find/?s=tt&q=" + url.QueryEscape(title)
	sb, err := fetchURL(ctx, c, searchURL)
	if err != nil {
		return nil, "", err
	}

	pageURL, ok := firstTitleURL(sb)
	if !ok {
		return nil, "", &providerx.NoResultError{Provider: "imdb", Title: title}
	}

	b, err := fetchURL(ctx, c, pageURL)
	return b, pageURL, err
}

// firstTitleURL 从 find 结果页提取第一个 /title/tt<id>/ 链接并规范化为绝对 URL。
func firstTitleURL(html []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", false
	}

	found := ""
	doc.Find(`a[href^="/title/tt"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		parts := strings.Split(strings.Trim(href, "/"), "/")
		if len(parts) < 2 || parts[0] != "title" || !strings.HasPrefix(parts[1], "tt") {
			return true
		}
		found = "https://www.imdb.com/title/" + parts[1] + "/"
		return false
	})
	return found, found != ""
}

// ldMovie 对应 IMDb 详情页 JSON-LD 的最小子集。
// director/genre 的形态不稳定（单对象或数组、单串或串数组），用 RawMessage 兜住。
type ldMovie struct {
	Type          string          `json:"@type"`
	Name          string          `json:"name"`
	Director      json.RawMessage `json:"director"`
	Genre         json.RawMessage `json:"genre"`
	DatePublished string          `json:"datePublished"`
}

// Parse 把 IMDb 详情页 HTML 解析为最小可用 Meta。
func (Provider) Parse(title string, htmlBody []byte, pageURL string) (domain.Meta, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Meta{}, errors.New("标题不能为空")
	}
	if len(htmlBody) == 0 {
		return domain.Meta{}, errors.New("html 为空")
	}
	if strings.TrimSpace(pageURL) == "" {
		return domain.Meta{}, errors.New("pageURL 不能为空")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return domain.Meta{}, err
	}

	raw := strings.TrimSpace(doc.Find(`script[type="application/ld+json"]`).First().Text())
	if raw == "" {
		return domain.Meta{}, errors.New("未找到 JSON-LD（疑似返回了拦截页/非详情页内容）")
	}

	var m ldMovie
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return domain.Meta{}, err
	}
	if m.Type != "Movie" {
		return domain.Meta{}, errors.New("JSON-LD 不是 Movie 条目：" + m.Type)
	}

	// JSON-LD 里的 name 是 HTML 实体转义过的（&apos; 等）。
	name := strings.TrimSpace(html.UnescapeString(m.Name))
	if name == "" {
		return domain.Meta{}, errors.New("JSON-LD 缺少 name")
	}
	if !foldContains(name, title) {
		return domain.Meta{}, errors.New("标题不匹配（疑似搜索命中了其它条目）")
	}

	year := 0
	if len(m.DatePublished) >= 4 {
		year, _ = strconv.Atoi(m.DatePublished[:4])
	}

	return domain.Meta{
		Title:    name,
		Director: strings.Join(personNames(m.Director), " / "),
		Year:     year,
		Genres:   stringList(m.Genre),
		Website:  strings.TrimSpace(pageURL),
	}, nil
}

// personNames 解析 director 字段：{"name":...} 或 [{"name":...},...]。
func personNames(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	type person struct {
		Name string `json:"name"`
	}

	out := make([]string, 0, 2)
	var many []person
	if err := json.Unmarshal(raw, &many); err == nil {
		for _, p := range many {
			if n := strings.TrimSpace(html.UnescapeString(p.Name)); n != "" {
				out = append(out, n)
			}
		}
		return out
	}
	var one person
	if err := json.Unmarshal(raw, &one); err == nil {
		if n := strings.TrimSpace(html.UnescapeString(one.Name)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// stringList 解析 genre 字段："drama" 或 ["drama",...]。
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		out := make([]string, 0, len(many))
		for _, s := range many {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one = strings.TrimSpace(one); one != "" {
			return []string{one}
		}
	}
	return nil
}

func foldContains(haystack, needle string) bool {
	return strings.Contains(
		strings.ToLower(domain.NormText(haystack)),
		strings.ToLower(domain.NormText(needle)),
	)
}

func fetchURL(ctx context.Context, c *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// IMDb 对非浏览器 Accept-Language 的默认行为不稳定，固定成英文页面便于解析。
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &providerx.HTTPStatusError{
			URL:        u,
			StatusCode: resp.StatusCode,
			Location:   strings.TrimSpace(resp.Header.Get("Location")),
		}
	}
	if len(b) == 0 {
		return nil, errors.New("empty response body")
	}
	return b, nil
}
