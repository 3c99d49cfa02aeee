package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory 单个会话的追加式问答记忆
// 每个会话独立持有，不跨会话共享。
type Memory struct {
	mu sync.Mutex

	turns []Turn
	// pendingFollowUp 上一轮答案留下的建议问题，等待用户确认
	pendingFollowUp string

	maxTurns int
}

func NewMemory(maxTurns int) *Memory {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &Memory{maxTurns: maxTurns}
}

func (m *Memory) Append(question, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, Turn{
		Question:  question,
		Answer:    answer,
		Timestamp: time.Now().UTC(),
	})
}

// Turns 返回全部轮次的副本
func (m *Memory) Turns() []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Recent 返回最近 n 轮的副本，用于拼装对话历史上下文
// n <= 0 时使用会话默认窗口。
func (m *Memory) Recent(n int) []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 {
		n = m.maxTurns
	}
	if n > len(m.turns) {
		n = len(m.turns)
	}
	out := make([]Turn, n)
	copy(out, m.turns[len(m.turns)-n:])
	return out
}

// TakeFollowUp 取出并清空待确认的建议问题
func (m *Memory) TakeFollowUp() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.pendingFollowUp
	m.pendingFollowUp = ""
	return q
}

func (m *Memory) SetFollowUp(question string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingFollowUp = question
}

// SessionStore 按会话 ID 管理 Memory 实例
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Memory
	maxTurns int
}

func NewSessionStore(maxTurns int) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Memory),
		maxTurns: maxTurns,
	}
}

// Create 新建会话并返回其 ID
func (s *SessionStore) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = NewMemory(s.maxTurns)
	s.mu.Unlock()
	return id
}

// Get 查找会话记忆，不存在返回 nil
func (s *SessionStore) Get(sessionID string) *Memory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID]
}

// GetOrCreate 查找会话记忆，不存在则以该 ID 创建
func (s *SessionStore) GetOrCreate(sessionID string) *Memory {
	s.mu.RLock()
	mem := s.sessions[sessionID]
	s.mu.RUnlock()
	if mem != nil {
		return mem
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if mem = s.sessions[sessionID]; mem != nil {
		return mem
	}
	mem = NewMemory(s.maxTurns)
	s.sessions[sessionID] = mem
	return mem
}
