package state

import (
	"sync"
	"time"
)

// DefaultDialogTTL через столько брошенный диалог забывается
const DefaultDialogTTL = 15 * time.Minute

// Manager хранит диалоги пользователей в памяти
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData // telegramID -> UserData
	ttl    time.Duration
	now    func() time.Time
}

// NewManager создаёт менеджер; ttl <= 0 означает DefaultDialogTTL
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultDialogTTL
	}
	return &Manager{
		states: make(map[int64]*UserData),
		ttl:    ttl,
		now:    time.Now,
	}
}

// GetState возвращает шаг диалога; просроченный диалог считается завершённым
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if data, ok := sm.active(telegramID); ok {
		return data.State
	}
	return StateNone
}

// SetState переводит диалог на шаг state; StateNone удаляет диалог
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.states, telegramID)
		return
	}

	data, ok := sm.active(telegramID)
	if !ok {
		data = &UserData{}
		sm.states[telegramID] = data
	}
	data.State = state
	data.UpdatedAt = sm.now()
}

// Draft возвращает копию черновика запроса
func (sm *Manager) Draft(telegramID int64) (Draft, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if data, ok := sm.active(telegramID); ok {
		return data.Draft, true
	}
	return Draft{}, false
}

// UpdateDraft меняет черновик активного диалога. false, если диалога нет.
func (sm *Manager) UpdateDraft(telegramID int64, fn func(d *Draft)) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	data, ok := sm.active(telegramID)
	if !ok {
		return false
	}
	fn(&data.Draft)
	data.UpdatedAt = sm.now()
	return true
}

// ClearState завершает диалог пользователя
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// Prune удаляет просроченные диалоги и возвращает их количество
func (sm *Manager) Prune() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for id, data := range sm.states {
		if sm.expired(data) {
			delete(sm.states, id)
			removed++
		}
	}
	return removed
}

// active вызывается под блокировкой
func (sm *Manager) active(telegramID int64) (*UserData, bool) {
	data, ok := sm.states[telegramID]
	if !ok || sm.expired(data) {
		return nil, false
	}
	return data, true
}

func (sm *Manager) expired(data *UserData) bool {
	return sm.now().Sub(data.UpdatedAt) > sm.ttl
}
