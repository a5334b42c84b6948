package domain

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Record 是目录中的一条影片记录。
//
// 约束：
// - Title 非空，是查找/删除/更新的事实主键（大小写不敏感匹配）
// - 不强制 Title 唯一：同名记录允许共存，按“集合顺序首个匹配”处理
// - ID 只存在于内存（用于在重名时精确定位某一条），永不落盘
type Record struct {
	ID uuid.UUID

	Title    string
	Director string
	Year     int
	Genres   []string
}

// NewRecord 构造一条带新 ID 的记录（genres 允许为空；做防御性拷贝）。
func NewRecord(title, director string, year int, genres []string) Record {
	return Record{
		ID:       uuid.New(),
		Title:    title,
		Director: director,
		Year:     year,
		Genres:   append([]string(nil), genres...),
	}
}

// NormText 把文本规范化为可比较形态（NFC）。
// 大小写不敏感比较必须先做 NFC：同一标题的组合/分解 Unicode 形式要能互相命中。
func NormText(s string) string {
	return norm.NFC.String(s)
}

// FoldEqual 判断两段文本在“NFC + 大小写折叠”意义下相等。
// 标题、导演、类型标签的大小写不敏感匹配都走这里，保证口径一致。
func FoldEqual(a, b string) bool {
	return strings.EqualFold(NormText(a), NormText(b))
}
