package nfo

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/John-Robertt/MCAT/internal/domain"
)

type movie struct {
	XMLName xml.Name `xml:"movie"`

	Title    string   `xml:"title"`
	Director string   `xml:"director,omitempty"`
	Year     int      `xml:"year,omitempty"`
	Genres   []string `xml:"genre,omitempty"`
}

// Encode 把一条记录转成 Kodi/Jellyfin/Emby 可读取的 NFO（XML）。
//
// 规则：
// - 除 title 外字段缺失允许为空（omitempty 直接不输出）
// - genres 去空白、去重、保持输入顺序（输出必须确定）
func Encode(rec domain.Record) ([]byte, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return nil, fmt.Errorf("标题不能为空")
	}

	m := movie{
		Title:    title,
		Director: strings.TrimSpace(rec.Director),
		Year:     rec.Year,
		Genres:   normList(rec.Genres),
	}

	b, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	// 约定：输出带 standalone="yes" 的 XML 头，便于与常见刮削器产物兼容。
	const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes" ?>` + "\n"
	return append([]byte(header), b...), nil
}

func normList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := m[s]; ok {
			continue
		}
		m[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
