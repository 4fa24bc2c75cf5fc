// Package generation 提供排班生成管线（步骤状态机、日志与超时控制）
package generation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dienstplan/dienstplan/pkg/errors"
	"github.com/dienstplan/dienstplan/pkg/logger"
	"github.com/dienstplan/dienstplan/pkg/model"
	"github.com/dienstplan/dienstplan/pkg/timeutil"
)

// DefaultTimeout 会话默认截止时长
const DefaultTimeout = 30 * time.Second

// CacheInvalidator 终态成功（含部分成功）后的缓存失效回调
type CacheInvalidator func(version int, dateRange model.DateRange)

// Pipeline 生成管线
// 每次 Run 创建一个独立会话；会话之间不共享任何状态
type Pipeline struct {
	svc        Service
	clock      Clock
	timeout    time.Duration
	stepPause  time.Duration
	logger     *logger.GenerationLogger
	invalidate CacheInvalidator
}

// Option 管线配置项
type Option func(*Pipeline)

// WithClock 注入时间源
func WithClock(clock Clock) Option {
	return func(p *Pipeline) { p.clock = clock }
}

// WithTimeout 设置会话截止时长
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithStepPause 设置步骤间的让出间隔，便于宿主界面刷新
func WithStepPause(d time.Duration) Option {
	return func(p *Pipeline) { p.stepPause = d }
}

// WithInvalidator 设置缓存失效回调
func WithInvalidator(fn CacheInvalidator) Option {
	return func(p *Pipeline) { p.invalidate = fn }
}

// NewPipeline 创建生成管线
func NewPipeline(svc Service, opts ...Option) *Pipeline {
	p := &Pipeline{
		svc:     svc,
		clock:   SystemClock(),
		timeout: DefaultTimeout,
		logger:  logger.NewGenerationLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Request 一次生成请求
type Request struct {
	StartDate            string           `json:"start_date"`
	EndDate              string           `json:"end_date"`
	Version              int              `json:"version"`
	CreateEmptySchedules bool             `json:"create_empty_schedules"`
	DetailedOptions      *DetailedOptions `json:"detailed_options,omitempty"`
	Requirements         *Requirements    `json:"requirements,omitempty"`
}

// Result 一次生成的结果
// 部分成功时 Schedules 仍然可用，与完全失败是不同的终态
type Result struct {
	Session        Snapshot              `json:"session"`
	Schedules      []model.ScheduleEntry `json:"schedules"`
	Errors         []ServiceError        `json:"errors,omitempty"`
	GeneratedCount int                   `json:"generated_assignments_count"`
	Success        bool                  `json:"success"`
	Partial        bool                  `json:"partial"`
	TimedOut       bool                  `json:"timed_out,omitempty"`
	Message        string                `json:"message,omitempty"`
	Duration       time.Duration         `json:"-"`
}

// Run 执行一次完整的生成会话
// 返回的 Result 恒不为空且携带会话快照；调用方应读取 steps 与 logs 渲染状态
func (p *Pipeline) Run(ctx context.Context, req *Request) (*Result, error) {
	session := NewSession(p.clock)
	start := p.clock.Now()
	p.logger.SessionStarted(session.ID.String(), req.StartDate, req.EndDate, req.Version)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 截止计时器在会话创建时即启动，与步骤执行相互独立
	// 外部中止信号与超时同样处理
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	deadline := p.clock.After(p.timeout)
	go func() {
		select {
		case <-deadline:
			if session.tryTerminate() {
				session.forceTimeout(fmt.Sprintf("生成超时（%s），会话已终止", p.timeout))
				p.logger.SessionTimeout(session.ID.String(), p.timeout)
				cancel()
			}
		case <-runCtx.Done():
			if session.tryTerminate() {
				session.forceTimeout("生成已被中止，会话已终止")
				cancel()
			}
		case <-watchdogDone:
		}
	}()

	// init：结构校验，失败则短路，后续步骤保持 pending，不发起外部调用
	p.stepStart(session, StepInit)
	if appErr := validateRequest(req); appErr != nil {
		if !session.tryTerminate() {
			return p.abortResult(session, start)
		}
		p.stepSettle(session, StepInit, StepError, appErr.Message)
		return p.failResult(session, start, appErr), appErr
	}
	p.stepDone(session, StepInit, fmt.Sprintf("日期范围 %s ~ %s，目标版本 %d", req.StartDate, req.EndDate, req.Version))
	p.yield(runCtx)

	// validate：本地补全选项默认值，不调用外部服务
	p.stepStart(session, StepValidate)
	opts := req.DetailedOptions
	if opts == nil {
		session.log(LogInfo, "未提供细化选项，使用默认配置", "")
	} else {
		opts.Normalize()
	}
	requirements := DefaultRequirements()
	if req.Requirements != nil {
		requirements = *req.Requirements
	}
	p.stepDone(session, StepValidate, "生成选项就绪")
	p.yield(runCtx)

	// process：唯一的挂起点，整个会话至多一次外部调用，不自动重试
	p.stepStart(session, StepProcess)
	resp, err := p.svc.Generate(runCtx, &ServiceRequest{
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		Version:              req.Version,
		CreateEmptySchedules: req.CreateEmptySchedules,
		DetailedOptions:      opts,
		Requirements:         requirements,
	})
	if err != nil {
		if !session.tryTerminate() {
			// 超时方已胜出，本方结果丢弃
			return p.abortResult(session, start)
		}
		appErr := errors.ExternalService("generation", err)
		p.stepSettle(session, StepProcess, StepError, appErr.Message)
		return p.failResult(session, start, appErr), appErr
	}
	if session.isTerminal() {
		// 响应虽已到达，但超时方已胜出
		return p.abortResult(session, start)
	}
	p.stepDone(session, StepProcess, fmt.Sprintf("服务返回 %d 条排班", len(resp.Schedules)))
	p.yield(runCtx)

	// assign：本地后处理，不再发起外部调用
	p.stepStart(session, StepAssign)
	sortEntries(resp.Schedules)
	if overlaps := countOverlaps(resp.Schedules); overlaps > 0 {
		session.log(LogWarning, fmt.Sprintf("发现 %d 处同员工同日的排班重叠", overlaps), "")
	}
	p.stepDone(session, StepAssign, fmt.Sprintf("整理 %d 条排班，覆盖 %d 天", len(resp.Schedules), countDates(resp.Schedules)))
	p.yield(runCtx)

	// finalize：核对元素级错误，部分成功与完全失败是不同终态
	p.stepStart(session, StepFinalize)
	if !session.tryTerminate() {
		return p.abortResult(session, start)
	}

	session.log(LogInfo, fmt.Sprintf("已生成 %d 条排班分配", resp.GeneratedAssignmentsCount), "")

	result := &Result{
		Schedules:      resp.Schedules,
		Errors:         resp.Errors,
		GeneratedCount: resp.GeneratedAssignmentsCount,
		Duration:       p.clock.Now().Sub(start),
	}

	if len(resp.Errors) > 0 {
		for _, e := range resp.Errors {
			session.log(LogError, e.Message, elementErrorDetails(e))
		}
		p.stepSettle(session, StepFinalize, StepError, fmt.Sprintf("存在 %d 个元素级错误", len(resp.Errors)))
		result.Partial = true
		result.Message = fmt.Sprintf("排班已生成，但存在 %d 个元素级错误", len(resp.Errors))
	} else {
		p.stepSettle(session, StepFinalize, StepCompleted, "生成结果无错误")
		result.Success = true
		result.Message = "排班生成完成"
	}

	result.Session = session.Snapshot()
	p.logger.SessionFinished(session.ID.String(), result.Duration, len(result.Schedules), len(result.Errors))

	// 成功与部分成功都会使既有查询缓存失效
	if p.invalidate != nil {
		p.invalidate(req.Version, model.DateRange{StartDate: req.StartDate, EndDate: req.EndDate})
	}

	return result, nil
}

// stepStart 标记步骤进行中并记录状态变化
func (p *Pipeline) stepStart(s *Session, id StepID) {
	s.markInProgress(id)
	p.logger.StepTransition(s.ID.String(), string(id), string(StepInProgress))
}

// stepDone 标记步骤完成并记录状态变化
func (p *Pipeline) stepDone(s *Session, id StepID, message string) {
	s.markCompleted(id, message)
	p.logger.StepTransition(s.ID.String(), string(id), string(StepCompleted))
}

// stepSettle 终态胜出方写入步骤最终状态并记录状态变化
func (p *Pipeline) stepSettle(s *Session, id StepID, status StepStatus, message string) {
	s.settleStep(id, status, message)
	p.logger.StepTransition(s.ID.String(), string(id), string(status))
}

// yield 步骤之间主动让出，宿主界面可借机刷新
func (p *Pipeline) yield(ctx context.Context) {
	if p.stepPause <= 0 {
		return
	}
	select {
	case <-p.clock.After(p.stepPause):
	case <-ctx.Done():
	}
}

// abortResult 构造超时/中止后的结果，步骤与日志已由胜出方写好
func (p *Pipeline) abortResult(session *Session, start time.Time) (*Result, error) {
	return &Result{
		Session:  session.Snapshot(),
		TimedOut: true,
		Message:  "生成会话已超时或被中止",
		Duration: p.clock.Now().Sub(start),
	}, errors.New(errors.CodeTimeout, "生成会话已超时或被中止")
}

// failResult 构造本地失败的结果
func (p *Pipeline) failResult(session *Session, start time.Time, appErr *errors.AppError) *Result {
	return &Result{
		Session:  session.Snapshot(),
		Message:  appErr.Message,
		Duration: p.clock.Now().Sub(start),
	}
}

// validateRequest 结构校验：日期范围完整有序且版本有效
func validateRequest(req *Request) *errors.AppError {
	if req.StartDate == "" || req.EndDate == "" {
		return errors.New(errors.CodeInvalidInput, "日期范围不能为空")
	}
	if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
		return errors.InvalidInput("start_date", "日期格式无效，应为YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", req.EndDate); err != nil {
		return errors.InvalidInput("end_date", "日期格式无效，应为YYYY-MM-DD")
	}
	if req.StartDate > req.EndDate {
		return errors.New(errors.CodeInvalidInput, "开始日期不能晚于结束日期")
	}
	if req.Version <= 0 {
		return errors.InvalidInput("version", "目标版本必须为正整数")
	}
	return nil
}

// sortEntries 按日期与开始时间排序排班条目
func sortEntries(entries []model.ScheduleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].StartTime < entries[j].StartTime
	})
}

// countOverlaps 统计同一员工同一天内时间重叠的条目对数
// 条目已按日期与开始时间排序；空占位与缺少时间的条目不参与
func countOverlaps(entries []model.ScheduleEntry) int {
	count := 0
	for i := 0; i < len(entries); i++ {
		a := entries[i]
		if a.EmployeeID == nil {
			continue
		}
		aStart, err := timeutil.ToMinutes(a.StartTime)
		if err != nil {
			continue
		}
		aEnd, err := timeutil.ToMinutes(a.EndTime)
		if err != nil {
			continue
		}
		for j := i + 1; j < len(entries); j++ {
			b := entries[j]
			if b.Date != a.Date {
				break
			}
			if b.EmployeeID == nil || *b.EmployeeID != *a.EmployeeID {
				continue
			}
			bStart, err := timeutil.ToMinutes(b.StartTime)
			if err != nil {
				continue
			}
			bEnd, err := timeutil.ToMinutes(b.EndTime)
			if err != nil {
				continue
			}
			if bStart < aEnd && aStart < bEnd {
				count++
			}
		}
	}
	return count
}

// countDates 统计条目覆盖的日期数
func countDates(entries []model.ScheduleEntry) int {
	dates := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		dates[e.Date] = struct{}{}
	}
	return len(dates)
}

// elementErrorDetails 拼接元素级错误的位置信息
func elementErrorDetails(e ServiceError) string {
	switch {
	case e.Date != "" && e.Shift != "":
		return fmt.Sprintf("日期 %s，班次 %s", e.Date, e.Shift)
	case e.Date != "":
		return "日期 " + e.Date
	case e.Shift != "":
		return "班次 " + e.Shift
	default:
		return ""
	}
}
