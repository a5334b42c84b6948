package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/John-Robertt/MCAT/internal/catalog"
	"github.com/John-Robertt/MCAT/internal/domain"
	"github.com/google/uuid"
)

func cmdLs(args []string) int {
	ca, err := parseCmdArgs(args, "catalog")
	if err != nil {
		return usageError(err)
	}
	st, _, code := openCatalog(ca)
	if code != 0 {
		return code
	}
	emitRecords(st.All())
	return 0
}

func cmdTitles(args []string) int {
	ca, err := parseCmdArgs(args, "catalog")
	if err != nil {
		return usageError(err)
	}
	st, _, code := openCatalog(ca)
	if code != 0 {
		return code
	}
	emitTitles(st.Titles())
	return 0
}

func cmdFind(args []string) int {
	ca, err := parseCmdArgs(args, "catalog")
	if err != nil {
		return usageError(err)
	}
	if len(ca.Pos) != 1 {
		return usageError(fmt.Errorf("find 需要一个标题参数"))
	}
	st, _, code := openCatalog(ca)
	if code != 0 {
		return code
	}

	rec, ok := st.FindByTitle(ca.Pos[0])
	if !ok {
		fmt.Fprintln(os.Stderr, (&domain.NotFoundError{Title: ca.Pos[0]}).Error())
		return 1
	}
	emitRecord(rec)
	return 0
}

func cmdAdd(args []string) int {
	ca, err := parseCmdArgs(args, "catalog", "director", "year", "genre")
	if err != nil {
		return usageError(err)
	}
	if len(ca.Pos) != 1 {
		return usageError(fmt.Errorf("add 需要一个标题参数"))
	}
	st, _, code := openCatalog(ca)
	if code != 0 {
		return code
	}

	rec, err := st.Add(ca.Pos[0], ca.Director, ca.Year, ca.Genres)
	if err != nil {
		fmt.Fprintf(os.Stderr, "添加失败：%v\n", err)
		return 1
	}
	emitRecord(rec)
	return 0
}

func cmdRm(args []string) int {
	ca, err := parseCmdArgs(args, "catalog", "id")
	if err != nil {
		return usageError(err)
	}

	st, _, code := openCatalog(ca)
	if code != 0 {
		return code
	}

	var rec domain.Record
	if ca.ID != "" {
		id, perr := uuid.Parse(ca.ID)
		if perr != nil {
			return usageError(fmt.Errorf("--id 不是合法的 ID：%q", ca.ID))
		}
		rec, err = st.RemoveByID(id)
	} else {
		if len(ca.Pos) != 1 {
			return usageError(fmt.Errorf("rm 需要一个标题参数（或 --id）"))
		}
		rec, err = st.Remove(ca.Pos[0])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "删除失败：%v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "已删除：%s\n", rec.Title)
	return 0
}

func cmdSet(args []string) int {
	ca, err := parseCmdArgs(args, "catalog", "director", "year", "genre", "id")
	if err != nil {
		return usageError(err)
	}
	if !ca.DirectorSet && !ca.YearSet && len(ca.Genres) == 0 {
		return usageError(fmt.Errorf("set 需要至少一个 --director/--year/--genre"))
	}

	st, _, code := openCatalog(ca)
	if code != 0 {
		return code
	}

	p := catalog.Patch{Director: ca.Director, Year: ca.Year, Genres: ca.Genres}
	var rec domain.Record
	if ca.ID != "" {
		id, perr := uuid.Parse(ca.ID)
		if perr != nil {
			return usageError(fmt.Errorf("--id 不是合法的 ID：%q", ca.ID))
		}
		rec, err = st.UpdateByID(id, p)
	} else {
		if len(ca.Pos) != 1 {
			return usageError(fmt.Errorf("set 需要一个标题参数（或 --id）"))
		}
		rec, err = st.Update(ca.Pos[0], p)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "更新失败：%v\n", err)
		return 1
	}
	emitRecord(rec)
	return 0
}

func cmdFilter(args []string) int {
	ca, err := parseCmdArgs(args, "catalog", "title", "director", "year", "genre")
	if err != nil {
		return usageError(err)
	}

	criteria := 0
	if ca.TitleSet {
		criteria++
	}
	if ca.DirectorSet {
		criteria++
	}
	if ca.YearSet {
		criteria++
	}
	if len(ca.Genres) > 0 {
		criteria++
	}
	if criteria != 1 || len(ca.Genres) > 1 {
		return usageError(fmt.Errorf("filter 需要且只需要一个条件：--title/--director/--year/--genre"))
	}

	st, _, code := openCatalog(ca)
	if code != 0 {
		return code
	}

	var out []domain.Record
	switch {
	case ca.TitleSet:
		out = st.FilterTitleContains(ca.Title)
	case ca.DirectorSet:
		out = st.FilterByDirector(ca.Director)
	case ca.YearSet:
		out = st.FilterByYear(ca.Year)
	default:
		out = st.FilterByGenre(ca.Genres[0])
	}
	emitRecords(out)
	return 0
}

func cmdBetween(args []string) int {
	ca, err := parseCmdArgs(args, "catalog")
	if err != nil {
		return usageError(err)
	}
	if len(ca.Pos) != 2 {
		return usageError(fmt.Errorf("between 需要两个年份参数"))
	}
	start, e1 := strconv.Atoi(ca.Pos[0])
	end, e2 := strconv.Atoi(ca.Pos[1])
	if e1 != nil || e2 != nil {
		return usageError(fmt.Errorf("between 的参数需要整数，实际是 %q %q", ca.Pos[0], ca.Pos[1]))
	}

	st, _, code := openCatalog(ca)
	if code != 0 {
		return code
	}
	emitTitles(st.TitlesBetween(start, end))
	return 0
}

func cmdStats(args []string) int {
	ca, err := parseCmdArgs(args, "catalog", "director")
	if err != nil {
		return usageError(err)
	}
	st, _, code := openCatalog(ca)
	if code != 0 {
		return code
	}

	if ca.DirectorSet {
		fmt.Fprintln(os.Stdout, st.CountByDirector(ca.Director))
		return 0
	}
	emitStats(st)
	return 0
}
