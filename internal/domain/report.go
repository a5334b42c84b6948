package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusEnriched = "enriched"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

const (
	ErrCodeFetchFailed   = "fetch_failed"
	ErrCodeParseFailed   = "parse_failed"
	ErrCodeSaveFailed    = "save_failed"
	ErrCodeConfigInvalid = "config_invalid"
)

// EnrichReport 是 enrich 的对外稳定输出（report.json / stdout JSON）。
type EnrichReport struct {
	Catalog string `json:"catalog"`
	DryRun  bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary EnrichSummary `json:"summary"`
	Items   []EnrichItem  `json:"items"`
}

type EnrichSummary struct {
	Enriched int `json:"enriched"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

type EnrichItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	ProviderRequested string `json:"provider_requested"`
	ProviderUsed      string `json:"provider_used"`
	Website           string `json:"website"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	// Filled 是本次补全（dry-run 下为“将补全”）的字段名，固定顺序 director/year/genres。
	Filled []string `json:"filled"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 title 字典序，再按 id（重名时仍然确定）
// 3) summary 由 items 计算得出
func (r *EnrichReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a, b := r.Items[i], r.Items[j]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})

	var s EnrichSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusEnriched:
			s.Enriched++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r EnrichReport) MarshalJSON() ([]byte, error) {
	type Alias EnrichReport
	return json.Marshal(Alias(r))
}
