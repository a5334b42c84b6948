package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/John-Robertt/MCAT/internal/domain"
	"github.com/John-Robertt/MCAT/internal/infra/cache"
	"github.com/John-Robertt/MCAT/internal/infra/fsx"
	"github.com/John-Robertt/MCAT/internal/nfo"
)

// cmdExport 把收藏导出为 Kodi 兼容的 <slug>.nfo。
// 已存在的文件不覆盖（视为已满足）；重名标题自动追加序号。
func cmdExport(args []string) int {
	ca, err := parseCmdArgs(args, "catalog", "dir")
	if err != nil {
		return usageError(err)
	}
	if len(ca.Pos) > 1 {
		return usageError(fmt.Errorf("export 最多一个标题参数"))
	}

	st, _, code := openCatalog(ca)
	if code != 0 {
		return code
	}

	dir := ca.Dir
	if dir == "" {
		dir = filepath.Join(st.Dir(), "nfo")
	}

	var recs []domain.Record
	if len(ca.Pos) == 1 {
		rec, ok := st.FindByTitle(ca.Pos[0])
		if !ok {
			fmt.Fprintln(os.Stderr, (&domain.NotFoundError{Title: ca.Pos[0]}).Error())
			return 1
		}
		recs = []domain.Record{rec}
	} else {
		recs = st.All()
	}

	written, skipped, failed := 0, 0, 0
	seen := map[string]int{}
	for _, rec := range recs {
		slug, serr := cache.TitleSlug(rec.Title)
		if serr != nil {
			fmt.Fprintf(os.Stderr, "%s: 无法生成文件名：%v\n", rec.Title, serr)
			failed++
			continue
		}
		seen[slug]++
		if n := seen[slug]; n > 1 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}

		b, eerr := nfo.Encode(rec)
		if eerr != nil {
			fmt.Fprintf(os.Stderr, "%s: 生成 NFO 失败：%v\n", rec.Title, eerr)
			failed++
			continue
		}

		werr := fsx.WriteFileAtomicNoOverwrite(dir, slug+".nfo", b)
		switch {
		case werr == nil:
			written++
		case errors.Is(werr, os.ErrExist):
			skipped++
		default:
			fmt.Fprintf(os.Stderr, "%s: 写入失败：%v\n", rec.Title, werr)
			failed++
		}
	}

	fmt.Fprintf(os.Stderr, "导出完成：written=%d skipped=%d failed=%d dir=%s\n", written, skipped, failed, dir)
	if failed > 0 {
		return 1
	}
	return 0
}
