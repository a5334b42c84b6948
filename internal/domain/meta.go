package domain

// Meta 是 provider 解析得到的影片元数据（最小可用集）。
//
// 约束：
// - Website 必须写入最终成功 provider 的详情页 URL（也是来源标记）
// - 字段缺失允许为空，但结构必须稳定
type Meta struct {
	Title    string
	Director string
	Year     int
	Genres   []string

	Website string
}
