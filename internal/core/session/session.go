package session

import (
	"sync"

	"recipe-assistant/internal/pkg/common"
)

// Role 對話角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn 一輪對話。RecipeName 選填，記錄該輪關聯到的食譜
type Turn struct {
	Role       Role   `json:"role"`
	Text       string `json:"text"`
	RecipeName string `json:"recipe_name,omitempty"`
}

// History 單一會話的對話歷史，只增不改。
// 由呼叫端持有並傳入路由器，不做跨會話共享。
type History struct {
	turns []Turn
}

// NewHistory 創建空的對話歷史
func NewHistory() *History {
	return &History{}
}

// Append 追加一輪對話
func (h *History) Append(turn Turn) {
	h.turns = append(h.turns, turn)
}

// Turns 依時間順序回傳所有輪次
func (h *History) Turns() []Turn {
	return h.turns
}

// Len 輪次數量
func (h *History) Len() int {
	return len(h.turns)
}

// LastRecipe 由最近往最舊掃描，回傳第一個帶食譜名的輪次的菜名；
// 全部沒有時回傳空字串
func (h *History) LastRecipe() string {
	for i := len(h.turns) - 1; i >= 0; i-- {
		if h.turns[i].RecipeName != "" {
			return h.turns[i].RecipeName
		}
	}
	return ""
}

// Manager 會話管理器：以會話 ID 對應獨立的歷史實例。
// 單一會話由一位使用者驅動，後寫者勝即可；跨會話不共享可變狀態。
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*History
}

// NewManager 創建會話管理器
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*History)}
}

// GetOrCreate 取得既有會話的歷史，沒有時建立新會話。
// 傳入空 ID 時自動產生新的會話 ID。
func (m *Manager) GetOrCreate(sessionID string) (string, *History) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID == "" {
		sessionID = common.GenerateUUID()
	}
	history, ok := m.sessions[sessionID]
	if !ok {
		history = NewHistory()
		m.sessions[sessionID] = history
	}
	return sessionID, history
}

// Drop 移除會話（會話結束後不保留任何狀態）
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}
