package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/John-Robertt/MCAT/internal/catalog"
	"github.com/John-Robertt/MCAT/internal/config"
	"github.com/John-Robertt/MCAT/internal/provider"
	"github.com/John-Robertt/MCAT/internal/provider/douban"
	"github.com/John-Robertt/MCAT/internal/provider/imdb"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	var code int
	switch args[0] {
	case "ls":
		code = cmdLs(args[1:])
	case "titles":
		code = cmdTitles(args[1:])
	case "stats":
		code = cmdStats(args[1:])
	case "add":
		code = cmdAdd(args[1:])
	case "rm":
		code = cmdRm(args[1:])
	case "set":
		code = cmdSet(args[1:])
	case "find":
		code = cmdFind(args[1:])
	case "filter":
		code = cmdFilter(args[1:])
	case "between":
		code = cmdBetween(args[1:])
	case "fetch":
		code = cmdFetch(args[1:])
	case "enrich":
		code = cmdEnrich(args[1:])
	case "export":
		code = cmdExport(args[1:])
	case "menu":
		code = cmdMenu(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		code = 2
	}
	if code != 0 {
		os.Exit(code)
	}
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  mcat <命令> [参数] [--catalog 文件]

目录命令：
  ls                         列出全部影片
  titles                     只列标题
  find <标题>                按标题查找（大小写不敏感）
  add <标题> [--director 导演] [--year 年份] [--genre 类型]...
  rm <标题> [--id ID]        删除（重名时可用 --id 精确定位）
  set <标题> [--director 导演] [--year 年份] [--genre 类型]... [--id ID]
  filter [--title 子串|--director 导演|--year 年份|--genre 类型]
  between <起> <止>          年份区间内的标题（含边界）
  stats [--director 导演]    统计信息

联网命令：
  fetch <标题> [--provider douban|imdb] [--add|--fill]
  enrich [--provider douban|imdb] [--apply]

其他：
  export [标题] [--dir 目录]  导出 Kodi 兼容 NFO
  menu                       交互式菜单
  help                       显示帮助

--catalog 未指定时读取当前目录 mcat.json 的 catalog 字段，最终默认 movies.json。
`)
}

// cmdArgs 是各子命令共享的参数集合；每个子命令声明自己认识的 flag，
// 其余一律报“未知参数”。
type cmdArgs struct {
	Catalog string

	Provider    string
	ProviderSet bool

	Director    string
	DirectorSet bool
	Year        int
	YearSet     bool
	Genres      []string
	Title       string
	TitleSet    bool

	ID    string
	Dir   string
	Apply bool
	Add   bool
	Fill  bool

	Pos []string
}

func parseCmdArgs(args []string, allowed ...string) (cmdArgs, error) {
	ca := cmdArgs{}

	allow := func(name string) bool {
		for _, a := range allowed {
			if a == name {
				return true
			}
		}
		return false
	}

	// --name value / --name=value 两种写法都接受。
	next := func(i *int, name, inline string, hasInline bool) (string, error) {
		if hasInline {
			return inline, nil
		}
		if *i+1 >= len(args) {
			return "", fmt.Errorf("--%s 需要一个值", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			ca.Pos = append(ca.Pos, a)
			continue
		}

		name := strings.TrimPrefix(strings.TrimPrefix(a, "-"), "-")
		inline := ""
		hasInline := false
		if j := strings.IndexByte(name, '='); j >= 0 {
			inline = name[j+1:]
			name = name[:j]
			hasInline = true
		}
		if !allow(name) {
			return cmdArgs{}, fmt.Errorf("未知参数 %q", a)
		}

		switch name {
		case "catalog":
			v, err := next(&i, name, inline, hasInline)
			if err != nil {
				return cmdArgs{}, err
			}
			ca.Catalog = v
		case "provider":
			v, err := next(&i, name, inline, hasInline)
			if err != nil {
				return cmdArgs{}, err
			}
			ca.Provider = v
			ca.ProviderSet = true
		case "director":
			v, err := next(&i, name, inline, hasInline)
			if err != nil {
				return cmdArgs{}, err
			}
			ca.Director = v
			ca.DirectorSet = true
		case "year":
			v, err := next(&i, name, inline, hasInline)
			if err != nil {
				return cmdArgs{}, err
			}
			y, err := strconv.Atoi(v)
			if err != nil {
				return cmdArgs{}, fmt.Errorf("--year 需要整数，实际是 %q", v)
			}
			ca.Year = y
			ca.YearSet = true
		case "genre":
			v, err := next(&i, name, inline, hasInline)
			if err != nil {
				return cmdArgs{}, err
			}
			ca.Genres = append(ca.Genres, v)
		case "title":
			v, err := next(&i, name, inline, hasInline)
			if err != nil {
				return cmdArgs{}, err
			}
			ca.Title = v
			ca.TitleSet = true
		case "id":
			v, err := next(&i, name, inline, hasInline)
			if err != nil {
				return cmdArgs{}, err
			}
			ca.ID = v
		case "dir":
			v, err := next(&i, name, inline, hasInline)
			if err != nil {
				return cmdArgs{}, err
			}
			ca.Dir = v
		case "apply":
			if hasInline && inline != "true" && inline != "false" {
				return cmdArgs{}, fmt.Errorf("--apply 只能是 true 或 false，实际是 %q", inline)
			}
			ca.Apply = !hasInline || inline == "true"
		case "add":
			ca.Add = true
		case "fill":
			ca.Fill = true
		}
	}

	if ca.ProviderSet {
		switch ca.Provider {
		case "douban", "imdb":
			// ok
		case "":
			return cmdArgs{}, fmt.Errorf("--provider 不能为空")
		default:
			return cmdArgs{}, fmt.Errorf("--provider 只能是 douban 或 imdb，实际是 %q", ca.Provider)
		}
	}

	return ca, nil
}

func usageError(err error) int {
	fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
	printUsage()
	return 2
}

// openCatalog 解析生效配置并打开收藏文件。
// 收藏文件损坏（FormatError）在这里就是致命错误：任何命令都不该带病继续。
func openCatalog(ca cmdArgs) (*catalog.Store, config.Effective, int) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return nil, config.Effective{}, 1
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		Catalog:     ca.Catalog,
		Provider:    ca.Provider,
		ProviderSet: ca.ProviderSet,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置错误：%v\n", err)
		return nil, config.Effective{}, 1
	}

	st, err := catalog.Open(eff.Catalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "打开收藏失败：%v\n", err)
		return nil, config.Effective{}, 1
	}
	return st, eff, 0
}

func newRegistry() (provider.Registry, error) {
	return provider.NewRegistry(douban.Provider{}, imdb.Provider{})
}
