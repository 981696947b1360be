// Package state хранит диалоги бота в памяти процесса
package state

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Manager управляет диалогами пользователей
type Manager struct {
	mu      sync.RWMutex
	dialogs map[int64]*Dialog // telegramID -> Dialog
}

func NewManager() *Manager {
	return &Manager{dialogs: make(map[int64]*Dialog)}
}

// Get возвращает копию диалога; пустой диалог, если его нет
func (m *Manager) Get(telegramID int64) Dialog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.dialogs[telegramID]
	if !ok {
		return Dialog{}
	}
	out := *d
	out.Selected = slices.Clone(d.Selected)
	return out
}

func (m *Manager) GetState(telegramID int64) UserState {
	return m.Get(telegramID).State
}

// Update меняет диалог под блокировкой. Диалог без состояния и выбора удаляется.
func (m *Manager) Update(telegramID int64, fn func(d *Dialog)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.dialogs[telegramID]
	if !ok {
		d = &Dialog{}
	}
	fn(d)

	if d.State == StateNone && len(d.Selected) == 0 {
		delete(m.dialogs, telegramID)
		return
	}
	m.dialogs[telegramID] = d
}

func (m *Manager) SetState(telegramID int64, state UserState) {
	m.Update(telegramID, func(d *Dialog) { d.State = state })
}

// ToggleSlot добавляет слот в выбор или убирает его. Возвращает текущий выбор.
func (m *Manager) ToggleSlot(telegramID int64, slotID uuid.UUID) []uuid.UUID {
	var selected []uuid.UUID
	m.Update(telegramID, func(d *Dialog) {
		if i := slices.Index(d.Selected, slotID); i >= 0 {
			d.Selected = slices.Delete(d.Selected, i, i+1)
		} else {
			d.Selected = append(d.Selected, slotID)
		}
		selected = slices.Clone(d.Selected)
	})
	return selected
}

// ClearSelection сбрасывает выбранные слоты, не трогая шаг диалога
func (m *Manager) ClearSelection(telegramID int64) {
	m.Update(telegramID, func(d *Dialog) { d.Selected = nil })
}

// ClearState удаляет диалог целиком
func (m *Manager) ClearState(telegramID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.dialogs, telegramID)
}
