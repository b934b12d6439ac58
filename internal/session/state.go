package session

import (
	"sync"
	"taskKeeper/internal/filter"
)

// View - снимок состояния представления. Не сохраняется между запусками.
type View struct {
	Status    filter.Status   `json:"status"`
	Priority  filter.Priority `json:"priority"`
	Search    string          `json:"search"`
	EditingID string          `json:"editing_id,omitempty"`
	FormOpen  bool            `json:"form_open"`
}

type State struct {
	mtx  sync.RWMutex
	view View
}

func NewState() *State {
	return &State{
		view: View{
			Status:   filter.StatusAll,
			Priority: filter.PriorityAll,
		},
	}
}

func (s *State) Snapshot() View {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.view
}

func (s *State) SetStatus(status filter.Status) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.view.Status = status
}

func (s *State) SetPriority(priority filter.Priority) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.view.Priority = priority
}

func (s *State) SetSearch(search string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.view.Search = search
}

// OpenForm открывает форму новой задачи и закрывает редактирование
func (s *State) OpenForm() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.view.FormOpen = true
	s.view.EditingID = ""
}

func (s *State) CloseForm() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.view.FormOpen = false
}

// StartEdit выбирает задачу для редактирования и закрывает форму создания
func (s *State) StartEdit(id string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.view.EditingID = id
	s.view.FormOpen = false
}

func (s *State) StopEdit() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.view.EditingID = ""
}

// StopEditIf сбрасывает редактирование, только если редактируется именно id
func (s *State) StopEditIf(id string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.view.EditingID == id {
		s.view.EditingID = ""
	}
}

// Cancel - глобальная отмена (Escape): сбрасывает поиск, форму и редактирование разом.
// Фильтры статуса и приоритета остаются.
func (s *State) Cancel() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.view.Search = ""
	s.view.FormOpen = false
	s.view.EditingID = ""
}
