package douban

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/MCAT/internal/domain"
	providerx "github.com/John-Robertt/MCAT/internal/provider"
)

// Provider 实现豆瓣电影的搜索定位、页面抓取与 HTML 解析。
//
// 约束：
// - Fetch/Parse 不做缓存/重试/限速（由上层统一控制）
// - Parse 必须是纯函数（依赖输入 html + pageURL）
type Provider struct{}

func (Provider) Name() string { return "douban" }

// Fetch 先通过综合搜索页定位 movie.douban.com/subject/<id>/ 详情页，再抓取详情页。
func (Provider) Fetch(ctx context.Context, title string, c *http.Client) ([]byte, string, error) {
	if c == nil {
		return nil, "", errors.New("http client 不能为空")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, "", errors.New("标题不能为空")
	}

	searchURL := "https://www.douban.com/search?cat=1002&q=" + url.QueryEscape(title)
	sb, err := fetchURL(ctx, c, searchURL)
	if err != nil {
		return nil, "", err
	}

	pageURL, ok := firstSubjectURL(sb)
	if !ok {
		return nil, "", &providerx.NoResultError{Provider: "douban", Title: title}
	}

	b, err := fetchURL(ctx, c, pageURL)
	return b, pageURL, err
}

// firstSubjectURL 从搜索结果页提取第一个电影详情页链接。
//
// 豆瓣搜索结果的链接有两种形态，都要认：
// - 直链：https://movie.douban.com/subject/<id>/...
// - 跳转：https://www.douban.com/link2/?url=<escaped subject url>&...
func firstSubjectURL(html []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", false
	}

	found := ""
	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return true
		}
		if strings.Contains(href, "/link2/") {
			if u, err := url.Parse(href); err == nil {
				href = u.Query().Get("url")
			}
		}
		if su, ok := subjectURL(href); ok {
			found = su
			return false
		}
		return true
	})
	return found, found != ""
}

// subjectURL 把任意 subject 链接规范化为 https://movie.douban.com/subject/<id>/。
func subjectURL(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if u.Host != "movie.douban.com" {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "subject" {
		return "", false
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return "", false
	}
	return "https://movie.douban.com/subject/" + parts[1] + "/", true
}

// Parse 把豆瓣详情页 HTML 解析为最小可用 Meta。
func (Provider) Parse(title string, html []byte, pageURL string) (domain.Meta, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Meta{}, errors.New("标题不能为空")
	}
	if len(html) == 0 {
		return domain.Meta{}, errors.New("html 为空")
	}
	if strings.TrimSpace(pageURL) == "" {
		return domain.Meta{}, errors.New("pageURL 不能为空")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return domain.Meta{}, err
	}

	parsedTitle := strings.TrimSpace(doc.Find(`h1 span[property="v:itemreviewed"]`).First().Text())
	if parsedTitle == "" {
		return domain.Meta{}, errors.New("未找到标题（疑似返回了验证页/非详情页内容）")
	}
	// 详情页标题通常是“中文名 原名”的拼接；要求包含请求标题，避免搜索跳到不相干条目。
	if !foldContains(parsedTitle, title) {
		return domain.Meta{}, errors.New("标题不匹配（疑似搜索命中了其它条目）")
	}

	directors := make([]string, 0, 2)
	doc.Find(`a[rel="v:directedBy"]`).Each(func(_ int, s *goquery.Selection) {
		if d := strings.TrimSpace(s.Text()); d != "" {
			directors = append(directors, d)
		}
	})

	genres := make([]string, 0, 4)
	doc.Find(`span[property="v:genre"]`).Each(func(_ int, s *goquery.Selection) {
		if g := strings.TrimSpace(s.Text()); g != "" {
			genres = append(genres, g)
		}
	})

	year := 0
	if y := strings.Trim(strings.TrimSpace(doc.Find("h1 span.year").First().Text()), "()"); y != "" {
		year, _ = strconv.Atoi(y)
	}

	return domain.Meta{
		Title:    parsedTitle,
		Director: strings.Join(directors, " / "),
		Year:     year,
		Genres:   genres,
		Website:  strings.TrimSpace(pageURL),
	}, nil
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
	// 豆瓣对无 Referer 的直访相对宽容，但带上更接近真实浏览行为。
	req.Header.Set("Referer", "https://www.douban.com/")

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
