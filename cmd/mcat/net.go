package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/MCAT/internal/app/enrich"
	"github.com/John-Robertt/MCAT/internal/catalog"
	"github.com/John-Robertt/MCAT/internal/domain"
	"github.com/John-Robertt/MCAT/internal/infra/cache"
	"github.com/John-Robertt/MCAT/internal/infra/fsx"
	"github.com/John-Robertt/MCAT/internal/infra/httpx"
)

func cmdFetch(args []string) int {
	ca, err := parseCmdArgs(args, "catalog", "provider", "add", "fill")
	if err != nil {
		return usageError(err)
	}
	if len(ca.Pos) != 1 {
		return usageError(fmt.Errorf("fetch 需要一个标题参数"))
	}
	if ca.Add && ca.Fill {
		return usageError(fmt.Errorf("--add 与 --fill 只能二选一"))
	}
	title := ca.Pos[0]

	st, eff, code := openCatalog(ca)
	if code != 0 {
		return code
	}

	reg, err := newRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化 provider registry 失败：%v\n", err)
		return 1
	}
	client, err := httpx.NewMetaClient(eff.ProxyURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "代理配置无效：%v\n", err)
		return 1
	}

	// fetch 与 enrich 走同一条缓存优先的抓取路径：重复 fetch 同一标题可离线命中。
	hc := cache.New(st.Dir(), false)
	meta, used, _, attempts, err := enrich.Scrape(context.Background(), hc, reg, eff.Provider, title, client, true)
	if err != nil {
		for _, at := range attempts {
			if at.Stage == "ok" {
				continue
			}
			fmt.Fprintf(os.Stderr, "%s %s 失败：%v\n", at.Provider, at.Stage, at.Err)
		}
		fmt.Fprintf(os.Stderr, "抓取失败：%v\n", err)
		return 1
	}
	if used != eff.Provider {
		fmt.Fprintf(os.Stderr, "提示：%s 失败，已回退到 %s\n", eff.Provider, used)
	}

	emitMeta(meta)

	if ca.Add {
		t := meta.Title
		if t == "" {
			t = title
		}
		rec, aerr := st.Add(t, meta.Director, meta.Year, meta.Genres)
		if aerr != nil {
			fmt.Fprintf(os.Stderr, "加入收藏失败：%v\n", aerr)
			return 1
		}
		fmt.Fprintf(os.Stderr, "已加入收藏：%s\n", rec.Title)
	}

	// --fill：只补首个匹配记录的空字段，已有内容永不覆盖。
	if ca.Fill {
		rec, ok := st.FindByTitle(title)
		if !ok {
			fmt.Fprintln(os.Stderr, (&domain.NotFoundError{Title: title}).Error())
			return 1
		}

		var p catalog.Patch
		var filled []string
		if strings.TrimSpace(rec.Director) == "" && strings.TrimSpace(meta.Director) != "" {
			p.Director = meta.Director
			filled = append(filled, "director")
		}
		if rec.Year == 0 && meta.Year != 0 {
			p.Year = meta.Year
			filled = append(filled, "year")
		}
		if len(rec.Genres) == 0 && len(meta.Genres) != 0 {
			p.Genres = meta.Genres
			filled = append(filled, "genres")
		}
		if len(filled) == 0 {
			fmt.Fprintln(os.Stderr, "无可补内容（记录已完整或 provider 未给出缺失字段）")
			return 0
		}
		if _, uerr := st.UpdateByID(rec.ID, p); uerr != nil {
			fmt.Fprintf(os.Stderr, "写入收藏失败：%v\n", uerr)
			return 1
		}
		fmt.Fprintf(os.Stderr, "已补全 %s：%s\n", rec.Title, strings.Join(filled, "/"))
	}
	return 0
}

func cmdEnrich(args []string) int {
	ca, err := parseCmdArgs(args, "catalog", "provider", "apply")
	if err != nil {
		return usageError(err)
	}

	st, eff, code := openCatalog(ca)
	if code != 0 {
		return code
	}

	reg, err := newRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化 provider registry 失败：%v\n", err)
		return 1
	}

	progressW, interactive := pickProgressWriter()
	var obs enrich.Observer
	if interactive {
		obs = newPrinter(progressW)
	}

	rr := enrich.ExecuteWithObserver(context.Background(), st, eff, ca.Apply, reg, obs)

	// apply：必须写入 <收藏目录>/cache/report.json；dry-run 禁止落盘。
	if ca.Apply {
		if werr := writeReportFile(st.Dir(), rr); werr != nil {
			fmt.Fprintf(os.Stderr, "写入 report.json 失败：%v\n", werr)
			emitEnrichReport(rr)
			return 1
		}
	}

	emitEnrichReport(rr)
	if rr.Summary.Failed == 0 {
		return 0
	}
	return 1
}

func writeReportFile(root string, rr domain.EnrichReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Join(root, "cache"), "report.json", b)
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
