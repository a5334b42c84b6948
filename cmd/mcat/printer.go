package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/John-Robertt/MCAT/internal/config"
	"github.com/John-Robertt/MCAT/internal/domain"
)

// printer 把 enrich 的进度事件渲染为一行一事件的文本。
// 只在交互终端启用，输出目标由 pickProgressWriter 决定（永不写 stdout JSON 流）。
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer { return &printer{w: w} }

func (p *printer) OnStart(eff config.Effective, apply bool) {
	mode := "dry-run"
	if apply {
		mode = "apply"
	}
	fmt.Fprintf(p.w, "配置（生效）：catalog=%s provider=%s 并发=%d 模式=%s\n",
		eff.Catalog, eff.Provider, eff.Concurrency, mode)
}

func (p *printer) OnPlanDone(total, pending, skipped int) {
	fmt.Fprintf(p.w, "规划：共 %d 条，待补全 %d，已完整 %d\n", total, pending, skipped)
}

func (p *printer) OnItemDone(idx, total int, it domain.EnrichItem, dur time.Duration) {
	switch it.Status {
	case domain.StatusEnriched:
		fmt.Fprintf(p.w, "[%d/%d] %s 补全 %s（%s，%.1fs）\n",
			idx, total, it.Title, strings.Join(it.Filled, "/"), it.ProviderUsed, dur.Seconds())
	case domain.StatusSkipped:
		fmt.Fprintf(p.w, "[%d/%d] %s 无可补内容\n", idx, total, it.Title)
	default:
		fmt.Fprintf(p.w, "[%d/%d] %s 失败 %s：%s\n", idx, total, it.Title, it.ErrorCode, it.ErrorMsg)
	}
}
