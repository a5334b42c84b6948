package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/John-Robertt/MCAT/internal/catalog"
	"github.com/John-Robertt/MCAT/internal/domain"
)

// 输出契约与 enrich 一致：stdout 是 TTY 时输出人类可读文本，
// 否则 stdout 只输出 JSON（便于管道/脚本消费），其余信息走 stderr。

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// recordView 是 CLI 的 JSON 输出形态。ID 仅存在于本次进程内（不落盘），
// 输出它是为了让用户在重名时能用 --id 精确定位。
type recordView struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Director string   `json:"director"`
	Year     int      `json:"year"`
	Genres   []string `json:"genres"`
}

func toView(r domain.Record) recordView {
	g := r.Genres
	if g == nil {
		g = []string{}
	}
	return recordView{
		ID:       r.ID.String(),
		Title:    r.Title,
		Director: r.Director,
		Year:     r.Year,
		Genres:   g,
	}
}

func humanLine(r domain.Record) string {
	var b strings.Builder
	b.WriteString(r.Title)
	if r.Year != 0 {
		fmt.Fprintf(&b, " (%d)", r.Year)
	}
	if r.Director != "" {
		b.WriteString(" / ")
		b.WriteString(r.Director)
	}
	if len(r.Genres) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(r.Genres, ", "))
	}
	return b.String()
}

func emitRecords(recs []domain.Record) {
	if isTTY(os.Stdout) {
		if len(recs) == 0 {
			fmt.Fprintln(os.Stdout, "（无匹配）")
			return
		}
		for _, r := range recs {
			fmt.Fprintln(os.Stdout, humanLine(r))
		}
		fmt.Fprintf(os.Stderr, "共 %d 条\n", len(recs))
		return
	}

	views := make([]recordView, 0, len(recs))
	for _, r := range recs {
		views = append(views, toView(r))
	}
	_ = json.NewEncoder(os.Stdout).Encode(views)
}

func emitRecord(r domain.Record) {
	if isTTY(os.Stdout) {
		fmt.Fprintln(os.Stdout, humanLine(r))
		return
	}
	_ = json.NewEncoder(os.Stdout).Encode(toView(r))
}

func emitTitles(titles []string) {
	if isTTY(os.Stdout) {
		for _, t := range titles {
			fmt.Fprintln(os.Stdout, t)
		}
		return
	}
	if titles == nil {
		titles = []string{}
	}
	_ = json.NewEncoder(os.Stdout).Encode(titles)
}

type statsView struct {
	Count          int     `json:"count"`
	AverageYear    float64 `json:"average_year"`
	LongestTitle   string  `json:"longest_title"`
	OldestTitle    string  `json:"oldest_title"`
	MostCommonYear int     `json:"most_common_year"`
}

func emitStats(st *catalog.Store) {
	longest, _ := st.LongestTitle()
	oldest, _ := st.OldestTitle()
	common, _ := st.MostCommonYear()
	sv := statsView{
		Count:          st.Count(),
		AverageYear:    st.AverageYear(),
		LongestTitle:   longest,
		OldestTitle:    oldest,
		MostCommonYear: common,
	}

	if !isTTY(os.Stdout) {
		_ = json.NewEncoder(os.Stdout).Encode(sv)
		return
	}

	if sv.Count == 0 {
		fmt.Fprintln(os.Stdout, "收藏为空")
		return
	}
	fmt.Fprintf(os.Stdout, "共 %d 条\n", sv.Count)
	fmt.Fprintf(os.Stdout, "平均年份：%.1f\n", sv.AverageYear)
	fmt.Fprintf(os.Stdout, "最长标题：%s\n", sv.LongestTitle)
	fmt.Fprintf(os.Stdout, "最老影片：%s\n", sv.OldestTitle)
	if sv.MostCommonYear != 0 {
		fmt.Fprintf(os.Stdout, "最常见年份：%d\n", sv.MostCommonYear)
	}
}

func emitMeta(m domain.Meta) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "标题：%s\n", m.Title)
		if m.Director != "" {
			fmt.Fprintf(os.Stdout, "导演：%s\n", m.Director)
		}
		if m.Year != 0 {
			fmt.Fprintf(os.Stdout, "年份：%d\n", m.Year)
		}
		if len(m.Genres) > 0 {
			fmt.Fprintf(os.Stdout, "类型：%s\n", strings.Join(m.Genres, ", "))
		}
		if m.Website != "" {
			fmt.Fprintf(os.Stdout, "来源：%s\n", m.Website)
		}
		return
	}

	type metaView struct {
		Title    string   `json:"title"`
		Director string   `json:"director"`
		Year     int      `json:"year"`
		Genres   []string `json:"genres"`
		Website  string   `json:"website"`
	}
	g := m.Genres
	if g == nil {
		g = []string{}
	}
	_ = json.NewEncoder(os.Stdout).Encode(metaView{
		Title: m.Title, Director: m.Director, Year: m.Year, Genres: g, Website: m.Website,
	})
}

func emitEnrichReport(rr domain.EnrichReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "完成：enriched=%d skipped=%d failed=%d\n",
			rr.Summary.Enriched, rr.Summary.Skipped, rr.Summary.Failed,
		)
		if rr.Summary.Failed > 0 {
			for _, it := range rr.Items {
				if it.Status != domain.StatusFailed {
					continue
				}
				key := it.Title
				if key == "" {
					key = "<unknown>"
				}
				fmt.Fprintf(os.Stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
			}
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 EnrichReport JSON（摘要走 stderr）。
	_ = json.NewEncoder(os.Stdout).Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：enriched=%d skipped=%d failed=%d\n",
		rr.Summary.Enriched, rr.Summary.Skipped, rr.Summary.Failed,
	)
}
