package nfo

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/John-Robertt/MCAT/internal/domain"
)

type movieOut struct {
	Title    string   `xml:"title"`
	Director string   `xml:"director"`
	Year     int      `xml:"year"`
	Genres   []string `xml:"genre"`
}

func TestEncode_Golden(t *testing.T) {
	b, err := Encode(domain.Record{
		Title:    "千与千寻",
		Director: "宫崎骏",
		Year:     2001,
		Genres:   []string{"动画", "奇幻"},
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	g := goldie.New(t, goldie.WithNameSuffix(".golden"))
	g.Assert(t, "basic", b)
}

func TestEncode_XMLRoundTripAndDeterministicGenres(t *testing.T) {
	b, err := Encode(domain.Record{
		Title:    " Heat ",
		Director: " Michael Mann ",
		Year:     1995,
		Genres:   []string{"crime", "thriller", "crime", " ", "drama"},
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	var out movieOut
	if err := xml.Unmarshal(b, &out); err != nil {
		t.Fatalf("xml.Unmarshal 失败：%v", err)
	}

	if out.Title != "Heat" || out.Director != "Michael Mann" || out.Year != 1995 {
		t.Fatalf("字段不一致：%+v", out)
	}
	// genres 按输入顺序去重、去空白。
	if len(out.Genres) != 3 || out.Genres[0] != "crime" || out.Genres[1] != "thriller" || out.Genres[2] != "drama" {
		t.Fatalf("genres 未按输入顺序去重：%v", out.Genres)
	}
}

func TestEncode_EmptyOptionalFieldsOmitted(t *testing.T) {
	b, err := Encode(domain.Record{Title: "A"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	for _, tag := range []string{"<director>", "<year>", "<genre>"} {
		if strings.Contains(string(b), tag) {
			t.Fatalf("空字段不应输出 %s：%s", tag, b)
		}
	}
}

func TestEncode_EmptyTitleRejected(t *testing.T) {
	if _, err := Encode(domain.Record{Title: "  "}); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}
