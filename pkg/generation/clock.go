// Package generation 提供排班生成管线（步骤状态机、日志与超时控制）
package generation

import "time"

// Clock 可注入的时间源
// 生成管线的截止计时与日志时间戳都经由它获取，便于测试中模拟时间流逝
type Clock interface {
	// Now 返回当前时间
	Now() time.Time

	// After 返回在指定时长后触发的通道
	After(d time.Duration) <-chan time.Time
}

// systemClock 真实时钟
type systemClock struct{}

// Now 返回当前时间
func (systemClock) Now() time.Time { return time.Now() }

// After 返回在指定时长后触发的通道
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock 返回真实时钟
func SystemClock() Clock { return systemClock{} }
