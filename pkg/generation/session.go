// Package generation 提供排班生成管线（步骤状态机、日志与超时控制）
package generation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// StepID 步骤标识，固定五个阶段按序执行
type StepID string

const (
	StepInit     StepID = "init"
	StepValidate StepID = "validate"
	StepProcess  StepID = "process"
	StepAssign   StepID = "assign"
	StepFinalize StepID = "finalize"
)

// stepOrder 固定的步骤顺序
var stepOrder = []StepID{StepInit, StepValidate, StepProcess, StepAssign, StepFinalize}

// stepTitles 步骤展示名
var stepTitles = map[StepID]string{
	StepInit:     "初始化请求",
	StepValidate: "校验生成选项",
	StepProcess:  "调用生成服务",
	StepAssign:   "整理排班条目",
	StepFinalize: "核对生成结果",
}

// StepStatus 步骤状态
// pending -> in_progress -> {completed | error}，终态不可回退
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepError      StepStatus = "error"
)

// Step 生成步骤
type Step struct {
	ID      StepID     `json:"id"`
	Title   string     `json:"title"`
	Status  StepStatus `json:"status"`
	Message string     `json:"message,omitempty"`
}

// LogType 日志条目类型
type LogType string

const (
	LogInfo    LogType = "info"
	LogWarning LogType = "warning"
	LogError   LogType = "error"
)

// LogEntry 会话日志条目，只追加不修改
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Type      LogType   `json:"type"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
}

// Session 一次生成管线的运行状态
// 由管线独占持有；外部观察者只能拿到 Snapshot 的只读副本
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu       sync.Mutex
	steps    []*Step
	logs     []LogEntry
	terminal bool
	clock    Clock
}

// NewSession 创建新会话，所有步骤置为 pending，日志为空
func NewSession(clock Clock) *Session {
	if clock == nil {
		clock = SystemClock()
	}

	steps := make([]*Step, len(stepOrder))
	for i, id := range stepOrder {
		steps[i] = &Step{ID: id, Title: stepTitles[id], Status: StepPending}
	}

	return &Session{
		ID:        uuid.New(),
		CreatedAt: clock.Now(),
		steps:     steps,
		clock:     clock,
	}
}

// step 按ID查找步骤，调用方需持有锁
func (s *Session) step(id StepID) *Step {
	for _, st := range s.steps {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// markInProgress 将步骤置为进行中
// 已到终态的步骤与已终止的会话不再变化
func (s *Session) markInProgress(id StepID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.step(id)
	if s.terminal || st == nil || st.Status == StepCompleted || st.Status == StepError {
		return
	}
	st.Status = StepInProgress
	s.appendLogLocked(LogInfo, "步骤开始: "+st.Title, "")
}

// markCompleted 将步骤置为完成
// 会话终止后失败方的标记不再生效，中止快照里不会出现多余的步骤变化
func (s *Session) markCompleted(id StepID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.step(id)
	if s.terminal || st == nil || st.Status == StepCompleted || st.Status == StepError {
		return
	}
	st.Status = StepCompleted
	st.Message = message
	s.appendLogLocked(LogInfo, "步骤完成: "+st.Title, message)
}

// settleStep 写入步骤最终状态
// 仅允许已获得终态权的一方调用，与 forceTimeout 同级；终态步骤仍不可回退
func (s *Session) settleStep(id StepID, status StepStatus, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.step(id)
	if st == nil || st.Status == StepCompleted || st.Status == StepError {
		return
	}
	st.Status = status
	st.Message = message
	if status == StepError {
		s.appendLogLocked(LogError, "步骤失败: "+st.Title, message)
	} else {
		s.appendLogLocked(LogInfo, "步骤完成: "+st.Title, message)
	}
}

// log 追加一条日志
func (s *Session) log(typ LogType, message, details string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLogLocked(typ, message, details)
}

// appendLogLocked 追加日志，调用方需持有锁
func (s *Session) appendLogLocked(typ LogType, message, details string) {
	s.logs = append(s.logs, LogEntry{
		Timestamp: s.clock.Now(),
		Type:      typ,
		Message:   message,
		Details:   details,
	})
}

// tryTerminate 一次性终态守卫
// 先到者获得终态权并返回 true，后到者的结果被丢弃
// 检查与置位在同一临界区内完成，超时回调与响应回调同时就绪也只有一方胜出
func (s *Session) tryTerminate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal {
		return false
	}
	s.terminal = true
	return true
}

// isTerminal 检查会话是否已到终态
func (s *Session) isTerminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}

// forceTimeout 超时强制终止：当前进行中的步骤（没有则 init）置为错误
// 仅允许已获得终态权的一方调用
func (s *Session) forceTimeout(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active *Step
	for _, st := range s.steps {
		if st.Status == StepInProgress {
			active = st
			break
		}
	}
	if active == nil {
		active = s.step(StepInit)
	}
	if active.Status != StepCompleted {
		active.Status = StepError
		active.Message = message
	}
	s.appendLogLocked(LogError, message, "")
}

// Snapshot 会话的只读快照
type Snapshot struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Steps     []Step     `json:"steps"`
	Logs      []LogEntry `json:"logs"`
}

// Snapshot 返回步骤与日志的深拷贝，外部观察者不可能改动会话本体
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps := make([]Step, len(s.steps))
	for i, st := range s.steps {
		steps[i] = *st
	}
	logs := make([]LogEntry, len(s.logs))
	copy(logs, s.logs)

	return Snapshot{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Steps:     steps,
		Logs:      logs,
	}
}
