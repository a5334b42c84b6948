package enrich

import (
	"time"

	"github.com/John-Robertt/MCAT/internal/config"
	"github.com/John-Robertt/MCAT/internal/domain"
)

// Observer 用于把“运行进度/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - enrich 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - OnItemDone 只会从收集 goroutine 调用（串行），实现无需加锁。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用（应尽量早，保证用户 1 秒内看到输出）。
	OnStart(eff config.Effective, apply bool)
	// OnPlanDone 在规划结束时调用：total 条记录，pending 条待补全，skipped 条已完整。
	OnPlanDone(total, pending, skipped int)
	// OnItemDone 在某条记录处理完成时调用（用于每条结果的一行输出）。
	OnItemDone(idx, total int, it domain.EnrichItem, dur time.Duration)
}
