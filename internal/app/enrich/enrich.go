// Package enrich 实现“批量补全”：扫描收藏里信息残缺的条目（导演/年份/类型
// 任一为空），按 provider 链抓取元数据，把缺失字段补回收藏文件。
//
// 约束：
// - dry-run（默认）只做 fetch+parse 验证并报告“将补全”的字段；不落盘、不写缓存。
// - 单条失败不影响其他条目：错误降级为 item 级失败写入 report。
// - 收藏文件的写入只发生在收集 goroutine（串行），worker 不触碰 Store。
// - 已有的非空字段永不覆盖（补全只填空洞）。
package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/MCAT/internal/catalog"
	"github.com/John-Robertt/MCAT/internal/config"
	"github.com/John-Robertt/MCAT/internal/domain"
	"github.com/John-Robertt/MCAT/internal/infra/cache"
	"github.com/John-Robertt/MCAT/internal/infra/httpx"
	"github.com/John-Robertt/MCAT/internal/provider"
)

// Execute 执行一次 enrich（dry-run/apply），并返回对外稳定的 EnrichReport。
func Execute(ctx context.Context, st *catalog.Store, eff config.Effective, apply bool, reg provider.Registry) domain.EnrichReport {
	return ExecuteWithObserver(ctx, st, eff, apply, reg, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度信息（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, st *catalog.Store, eff config.Effective, apply bool, reg provider.Registry, obs Observer) domain.EnrichReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff, apply)
	}

	rr := domain.EnrichReport{
		Catalog:   st.Path(),
		DryRun:    !apply,
		StartedAt: started,
		Items:     make([]domain.EnrichItem, 0, st.Count()),
	}

	metaClient, err := httpx.NewMetaClient(eff.ProxyURL)
	if err != nil {
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeConfigInvalid, fmt.Sprintf("proxy.url 无效：%v", err)))
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	// HTML 缓存与收藏文件同目录；dry-run 下只读。
	hc := cache.New(st.Dir(), !apply)

	// 规划：字段齐全的条目直接 skipped，残缺的进入执行队列。
	recs := st.All()
	pending := make([]domain.Record, 0, len(recs))
	for _, r := range recs {
		if len(missingFields(r)) == 0 {
			rr.Items = append(rr.Items, domain.EnrichItem{
				ID:                r.ID.String(),
				Title:             r.Title,
				ProviderRequested: eff.Provider,
				Status:            domain.StatusSkipped,
				Filled:            []string{},
			})
			continue
		}
		pending = append(pending, r)
	}

	if obs != nil {
		obs.OnPlanDone(len(recs), len(pending), len(recs)-len(pending))
	}

	workers := eff.Concurrency
	if workers < 1 {
		workers = 1
	}

	type scrapeResult struct {
		rec     domain.Record
		meta    domain.Meta
		used    string
		website string
		err     error
		dur     time.Duration
	}

	jobs := make(chan domain.Record)
	results := make(chan scrapeResult, len(pending))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				oneStarted := time.Now()
				meta, used, website, _, serr := Scrape(ctx, hc, reg, eff.Provider, r.Title, metaClient, apply)
				results <- scrapeResult{
					rec:     r,
					meta:    meta,
					used:    used,
					website: website,
					err:     serr,
					dur:     time.Since(oneStarted),
				}
			}
		}()
	}

	go func() {
		for _, r := range pending {
			jobs <- r
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	// 收集：唯一允许写 Store 的地方（按完成顺序串行 apply）。
	done := 0
	for res := range results {
		done++
		it := applyOne(st, eff.Provider, apply, res.rec, res.meta, res.used, res.website, res.err)
		rr.Items = append(rr.Items, it)
		if obs != nil {
			obs.OnItemDone(done, len(pending), it, res.dur)
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

// missingFields 返回残缺字段名，固定顺序 director/year/genres。
func missingFields(r domain.Record) []string {
	var out []string
	if strings.TrimSpace(r.Director) == "" {
		out = append(out, "director")
	}
	if r.Year == 0 {
		out = append(out, "year")
	}
	if len(r.Genres) == 0 {
		out = append(out, "genres")
	}
	return out
}

// fillPatch 根据残缺字段与抓到的元数据算出补全 Patch。
// 返回的 filled 是实际可补的字段名（meta 对应字段也为空时不算）。
func fillPatch(r domain.Record, meta domain.Meta) (catalog.Patch, []string) {
	var p catalog.Patch
	filled := []string{}
	for _, f := range missingFields(r) {
		switch f {
		case "director":
			if strings.TrimSpace(meta.Director) != "" {
				p.Director = meta.Director
				filled = append(filled, f)
			}
		case "year":
			if meta.Year != 0 {
				p.Year = meta.Year
				filled = append(filled, f)
			}
		case "genres":
			if len(meta.Genres) != 0 {
				p.Genres = meta.Genres
				filled = append(filled, f)
			}
		}
	}
	return p, filled
}

func applyOne(st *catalog.Store, providerRequested string, apply bool, rec domain.Record, meta domain.Meta, used, website string, scrapeErr error) domain.EnrichItem {
	it := domain.EnrichItem{
		ID:                rec.ID.String(),
		Title:             rec.Title,
		ProviderRequested: providerRequested,
		ProviderUsed:      used,
		Website:           website,
		Status:            domain.StatusEnriched, // 失败时覆盖
		Filled:            []string{},
	}

	if scrapeErr != nil {
		fillProviderError(&it, scrapeErr)
		return it
	}

	p, filled := fillPatch(rec, meta)
	it.Filled = filled

	// 抓取成功但 provider 也给不出缺失字段：视为 skipped（没有可写的内容）。
	if len(filled) == 0 {
		it.Status = domain.StatusSkipped
		return it
	}

	if !apply {
		// dry-run：Filled 表示“将补全”。
		return it
	}

	if _, err := st.UpdateByID(rec.ID, p); err != nil {
		it.Status = domain.StatusFailed
		it.ErrorCode = domain.ErrCodeSaveFailed
		it.ErrorMsg = fmt.Sprintf("写入收藏失败：%v", err)
		it.Filled = []string{}
		return it
	}
	return it
}

// Scrape 先查页面缓存，未命中或坏缓存再走网络；fetch/enrich 共用这一条路径。
//
// 约束：
// - 缓存按 requested→fallback 顺序逐个 provider 查找：网络抓取写缓存时用的是
//   实际成功的 provider 名，读取也必须覆盖整条回退链。
// - 命中时用缓存里保存的 pageURL 离线重放 Parse（Parse 是纯函数，拒绝空 pageURL）。
// - allowCacheWrite 为 true（apply）时把网络抓到的页面写回缓存。
func Scrape(ctx context.Context, hc cache.Store, reg provider.Registry, providerRequested, title string, c *http.Client, allowCacheWrite bool) (domain.Meta, string, string, []provider.Attempt, error) {
	requested := strings.ToLower(strings.TrimSpace(providerRequested))
	if order, oerr := provider.FallbackOrder(requested); oerr == nil {
		for _, name := range order {
			html, pageURL, ok, err := hc.ReadProviderPage(name, title)
			if err != nil || !ok {
				continue
			}
			p, ok2 := reg.Get(name)
			if !ok2 {
				continue
			}
			m, perr := p.Parse(title, html, pageURL)
			if perr != nil {
				// 坏缓存：忽略，走网络（apply 会写回新缓存）。
				continue
			}
			m.Website = pageURL
			return m, name, pageURL, nil, nil
		}
	}

	meta, used, website, html, attempts, err := provider.FetchParseTrace(ctx, reg, providerRequested, title, c)
	if err != nil {
		return domain.Meta{}, "", "", attempts, err
	}

	if allowCacheWrite && !hc.ReadOnly {
		_ = hc.WriteProviderPage(used, title, html, website)
	}
	return meta, used, website, attempts, nil
}

func syntheticFailed(code, msg string) domain.EnrichItem {
	return domain.EnrichItem{
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
		Filled:    []string{},
	}
}

func fillProviderError(it *domain.EnrichItem, err error) {
	it.Status = domain.StatusFailed
	it.Filled = []string{}

	var pe *provider.Error
	if errors.As(err, &pe) {
		switch pe.Stage {
		case "fetch":
			it.ErrorCode = domain.ErrCodeFetchFailed
			it.ErrorMsg = humanizeFetchError(pe.Provider, pe.Err)
		case "parse":
			it.ErrorCode = domain.ErrCodeParseFailed
			it.ErrorMsg = humanizeParseError(pe.Provider, pe.Err)
		default:
			it.ErrorCode = domain.ErrCodeFetchFailed
			it.ErrorMsg = fmt.Sprintf("%s 失败：%v", pe.Provider, pe.Err)
		}
		return
	}

	it.ErrorCode = domain.ErrCodeFetchFailed
	it.ErrorMsg = err.Error()
}

func humanizeFetchError(providerName string, err error) string {
	if err == nil {
		return providerName + " 抓取失败"
	}

	var nr *provider.NoResultError
	if errors.As(err, &nr) {
		return fmt.Sprintf("%s 搜索不到该片名（可能拼写不同或站点未收录）。可尝试修改标题或换用另一 provider。", providerName)
	}

	// HTTP 非 2xx：尽量给出可操作提示（反爬/限流是最常见问题）。
	var hs *provider.HTTPStatusError
	if errors.As(err, &hs) {
		switch hs.StatusCode {
		case 403, 429:
			return fmt.Sprintf("%s 返回 HTTP %d（可能触发反爬/限流）。建议降低并发或配置 proxy.url。", providerName, hs.StatusCode)
		case 404:
			return fmt.Sprintf("%s 返回 HTTP 404（页面不存在）。", providerName)
		default:
			if loc := strings.TrimSpace(hs.Location); loc != "" {
				return fmt.Sprintf("%s 返回 HTTP %d（重定向）：%s", providerName, hs.StatusCode, loc)
			}
			return fmt.Sprintf("%s 返回 HTTP %d。", providerName, hs.StatusCode)
		}
	}

	low := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(low, "timeout") {
		return fmt.Sprintf("%s 抓取超时。建议检查网络/代理，或降低并发后重试。", providerName)
	}

	return fmt.Sprintf("%s 抓取失败：%v", providerName, err)
}

func humanizeParseError(providerName string, err error) string {
	if err == nil {
		return providerName + " 解析失败"
	}
	// 解析失败通常意味着站点结构漂移或被返回了非预期页面（例如验证页/空内容）。
	return fmt.Sprintf("%s 解析失败（站点结构可能变化或返回了非详情页内容）：%v", providerName, err)
}
