package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/John-Robertt/MCAT/internal/catalog"
)

func cmdMenu(args []string) int {
	ca, err := parseCmdArgs(args, "catalog")
	if err != nil {
		return usageError(err)
	}
	st, _, code := openCatalog(ca)
	if code != 0 {
		return code
	}
	if err := runMenu(st, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "菜单退出：%v\n", err)
		return 1
	}
	return 0
}

// runMenu 是交互式菜单主循环。约束：
// - 每个动作只调用一次 Store 操作，失败（如未找到）打印后回到菜单，不退出。
// - 输入 EOF（Ctrl-D）等价于选择退出。
func runMenu(st *catalog.Store, in io.Reader, out io.Writer) error {
	r := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, `
==== mcat ====
1) 列出全部
2) 添加影片
3) 删除影片
4) 更新影片
5) 查找影片
6) 年份区间
7) 统计信息
0) 退出
请选择：`)

		choice, ok := readLine(r)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "0", "q":
			return nil
		case "1":
			menuList(st, out)
		case "2":
			menuAdd(st, r, out)
		case "3":
			menuRemove(st, r, out)
		case "4":
			menuUpdate(st, r, out)
		case "5":
			menuFind(st, r, out)
		case "6":
			menuBetween(st, r, out)
		case "7":
			menuStats(st, out)
		default:
			fmt.Fprintf(out, "无效选择：%q\n", strings.TrimSpace(choice))
		}
	}
}

func readLine(r *bufio.Scanner) (string, bool) {
	if !r.Scan() {
		return "", false
	}
	return r.Text(), true
}

func prompt(r *bufio.Scanner, out io.Writer, label string) (string, bool) {
	fmt.Fprint(out, label)
	return readLine(r)
}

func menuList(st *catalog.Store, out io.Writer) {
	recs := st.All()
	if len(recs) == 0 {
		fmt.Fprintln(out, "收藏为空")
		return
	}
	for _, rec := range recs {
		fmt.Fprintln(out, humanLine(rec))
	}
}

func menuAdd(st *catalog.Store, r *bufio.Scanner, out io.Writer) {
	title, ok := prompt(r, out, "标题：")
	if !ok {
		return
	}
	director, ok := prompt(r, out, "导演（可空）：")
	if !ok {
		return
	}
	yearStr, ok := prompt(r, out, "年份（可空）：")
	if !ok {
		return
	}
	genreStr, ok := prompt(r, out, "类型（逗号分隔，可空）：")
	if !ok {
		return
	}

	year := 0
	if s := strings.TrimSpace(yearStr); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			fmt.Fprintf(out, "年份需要整数，实际是 %q\n", s)
			return
		}
		year = y
	}

	rec, err := st.Add(strings.TrimSpace(title), strings.TrimSpace(director), year, splitGenres(genreStr))
	if err != nil {
		fmt.Fprintf(out, "添加失败：%v\n", err)
		return
	}
	fmt.Fprintf(out, "已添加：%s\n", humanLine(rec))
}

func menuRemove(st *catalog.Store, r *bufio.Scanner, out io.Writer) {
	title, ok := prompt(r, out, "标题：")
	if !ok {
		return
	}
	rec, err := st.Remove(strings.TrimSpace(title))
	if err != nil {
		fmt.Fprintf(out, "删除失败：%v\n", err)
		return
	}
	fmt.Fprintf(out, "已删除：%s\n", rec.Title)
}

func menuUpdate(st *catalog.Store, r *bufio.Scanner, out io.Writer) {
	title, ok := prompt(r, out, "标题：")
	if !ok {
		return
	}
	director, ok := prompt(r, out, "新导演（空=不变）：")
	if !ok {
		return
	}
	yearStr, ok := prompt(r, out, "新年份（空=不变）：")
	if !ok {
		return
	}
	genreStr, ok := prompt(r, out, "新类型（逗号分隔，空=不变）：")
	if !ok {
		return
	}

	p := catalog.Patch{Director: strings.TrimSpace(director), Genres: splitGenres(genreStr)}
	if s := strings.TrimSpace(yearStr); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			fmt.Fprintf(out, "年份需要整数，实际是 %q\n", s)
			return
		}
		p.Year = y
	}

	rec, err := st.Update(strings.TrimSpace(title), p)
	if err != nil {
		fmt.Fprintf(out, "更新失败：%v\n", err)
		return
	}
	fmt.Fprintf(out, "已更新：%s\n", humanLine(rec))
}

func menuFind(st *catalog.Store, r *bufio.Scanner, out io.Writer) {
	title, ok := prompt(r, out, "标题：")
	if !ok {
		return
	}
	rec, found := st.FindByTitle(strings.TrimSpace(title))
	if !found {
		fmt.Fprintf(out, "未找到：%q\n", strings.TrimSpace(title))
		return
	}
	fmt.Fprintln(out, humanLine(rec))
}

func menuBetween(st *catalog.Store, r *bufio.Scanner, out io.Writer) {
	startStr, ok := prompt(r, out, "起始年份：")
	if !ok {
		return
	}
	endStr, ok := prompt(r, out, "结束年份：")
	if !ok {
		return
	}
	start, e1 := strconv.Atoi(strings.TrimSpace(startStr))
	end, e2 := strconv.Atoi(strings.TrimSpace(endStr))
	if e1 != nil || e2 != nil {
		fmt.Fprintln(out, "年份需要整数")
		return
	}
	titles := st.TitlesBetween(start, end)
	if len(titles) == 0 {
		fmt.Fprintln(out, "（无匹配）")
		return
	}
	for _, t := range titles {
		fmt.Fprintln(out, t)
	}
}

func menuStats(st *catalog.Store, out io.Writer) {
	if st.Count() == 0 {
		fmt.Fprintln(out, "收藏为空")
		return
	}
	fmt.Fprintf(out, "共 %d 条\n", st.Count())
	fmt.Fprintf(out, "平均年份：%.1f\n", st.AverageYear())
	if t, ok := st.LongestTitle(); ok {
		fmt.Fprintf(out, "最长标题：%s\n", t)
	}
	if t, ok := st.OldestTitle(); ok {
		fmt.Fprintf(out, "最老影片：%s\n", t)
	}
	if y, ok := st.MostCommonYear(); ok {
		fmt.Fprintf(out, "最常见年份：%d\n", y)
	}
}

func splitGenres(s string) []string {
	var out []string
	for _, g := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '，' }) {
		g = strings.TrimSpace(g)
		if g != "" {
			out = append(out, g)
		}
	}
	return out
}
