// Package timecalc 提供营业时间范围、班次定位与工时计算
package timecalc

import (
	"regexp"

	"github.com/dienstplan/dienstplan/pkg/errors"
	"github.com/dienstplan/dienstplan/pkg/model"
	"github.com/dienstplan/dienstplan/pkg/timeutil"
)

// Range 时间范围（零点起分钟数）
// 扩展后的范围允许为负或超过1440，仅用于同一天内的展示计算
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Width 返回范围宽度（分钟）
func (r Range) Width() int {
	return r.End - r.Start
}

// ExtendedRange 计算含开关店缓冲的可见时间范围
// 不做取模回绕，越界值由调用方在展示时截断
func ExtendedRange(storeOpen, storeClose, beforeMinutes, afterMinutes int) Range {
	return Range{
		Start: storeOpen - beforeMinutes,
		End:   storeClose + afterMinutes,
	}
}

// ExtendedRangeFromStore 从门店配置计算可见时间范围
func ExtendedRangeFromStore(store *model.Store) (Range, error) {
	open, err := timeutil.ToMinutes(store.OpeningTime)
	if err != nil {
		return Range{}, err
	}
	closing, err := timeutil.ToMinutes(store.ClosingTime)
	if err != nil {
		return Range{}, err
	}
	return ExtendedRange(open, closing, store.KeyholderBeforeMinutes, store.KeyholderAfterMinutes), nil
}

// TimelineLabels 生成时间轴刻度标签，首尾均包含
// stepMinutes 非正时按60分钟取刻度
func TimelineLabels(r Range, stepMinutes int) []string {
	if stepMinutes <= 0 {
		stepMinutes = 60
	}
	if r.End < r.Start {
		return nil
	}

	labels := make([]string, 0, r.Width()/stepMinutes+2)
	for t := r.Start; t <= r.End; t += stepMinutes {
		labels = append(labels, timeutil.ToText(t))
	}
	// 末端不在刻度上时补齐
	if (r.End-r.Start)%stepMinutes != 0 {
		labels = append(labels, timeutil.ToText(r.End))
	}
	return labels
}

// Position 班次在可见范围内的相对位置（百分比）
type Position struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// ShiftPosition 计算班次相对可见范围的位置
// 完全在范围之外返回 {0,0}；范围宽度为零属于非法输入
func ShiftPosition(shiftStart, shiftEnd int, r Range) (Position, error) {
	width := r.Width()
	if width == 0 {
		return Position{}, errors.New(errors.CodeInvalidTimeRange, "可见范围宽度为零")
	}

	// 完全在范围之外：不渲染，也不是错误
	if shiftEnd <= r.Start || shiftStart >= r.End {
		return Position{}, nil
	}

	// 裁剪到可见范围
	clippedStart := shiftStart
	if clippedStart < r.Start {
		clippedStart = r.Start
	}
	clippedEnd := shiftEnd
	if clippedEnd > r.End {
		clippedEnd = r.End
	}

	left := float64(clippedStart-r.Start) / float64(width) * 100
	w := float64(clippedEnd-clippedStart) / float64(width) * 100

	left = clamp(left, 0, 100)
	w = clamp(w, 0, 100)
	if left+w > 100 {
		w = 100 - left
	}

	return Position{Left: left, Width: w}, nil
}

// clamp 截断到区间
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// secondBreakPattern 备注中的第二段休息，格式 HH:MM-HH:MM
var secondBreakPattern = regexp.MustCompile(`(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)

// ShiftHours 计算班次净工时（小时）
// 班次允许跨午夜；休息段（含备注中的第二段）按跨午夜安全时长扣除
// 起止时间缺失返回0
func ShiftHours(shift *model.Shift) float64 {
	if shift == nil || shift.StartTime == "" || shift.EndTime == "" {
		return 0
	}

	start, err := timeutil.ToMinutes(shift.StartTime)
	if err != nil {
		return 0
	}
	end, err := timeutil.ToMinutes(shift.EndTime)
	if err != nil {
		return 0
	}

	duration := timeutil.WrapDuration(start, end)

	if shift.HasBreak() {
		duration -= breakMinutes(shift.Break.Start, shift.Break.End)

		// 备注中携带的第二段休息一并扣除
		if m := secondBreakPattern.FindStringSubmatch(shift.Break.Note); m != nil {
			duration -= breakMinutes(m[1], m[2])
		}
	}

	return float64(duration) / 60
}

// breakMinutes 计算单段休息的时长，解析失败按0处理
func breakMinutes(startText, endText string) int {
	start, err := timeutil.ToMinutes(startText)
	if err != nil {
		return 0
	}
	end, err := timeutil.ToMinutes(endText)
	if err != nil {
		return 0
	}
	return timeutil.WrapDuration(start, end)
}

// BreakFlags 休息与工时规则的提示性标记
// 仅作提示，不阻断任何操作
type BreakFlags struct {
	HasBreakViolation     bool `json:"has_break_violation"`      // 超过6小时未安排休息
	HasLongBreakViolation bool `json:"has_long_break_violation"` // 超过9小时未安排第二段休息
	HasHoursViolation     bool `json:"has_hours_violation"`      // 超过10小时
}

// HasSecondBreak 检查班次备注是否携带第二段休息
func HasSecondBreak(shift *model.Shift) bool {
	return shift != nil && shift.Break != nil && secondBreakPattern.MatchString(shift.Break.Note)
}

// ValidateBreaks 根据净工时检查休息规则
func ValidateBreaks(shift *model.Shift) BreakFlags {
	hours := ShiftHours(shift)

	return BreakFlags{
		HasBreakViolation:     hours > 6 && !shiftHasBreak(shift),
		HasLongBreakViolation: hours > 9 && !HasSecondBreak(shift),
		HasHoursViolation:     hours > 10,
	}
}

// shiftHasBreak 空指针安全的休息段检查
func shiftHasBreak(shift *model.Shift) bool {
	return shift != nil && shift.HasBreak()
}
