package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"taskKeeper/internal/handlers/dto"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/service"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "task-keeper"

type TaskHandler struct {
	TaskService Service
	now         func() time.Time
}

type HandlerOption func(*TaskHandler)

// WithClock задаёт источник времени для вычисления "сегодня"
func WithClock(now func() time.Time) HandlerOption {
	return func(h *TaskHandler) {
		h.now = now
	}
}

func NewTaskHandler(taskService Service, options ...HandlerOption) *TaskHandler {
	h := &TaskHandler{
		TaskService: taskService,
		now:         time.Now,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

func (s *TaskHandler) today() task.Date {
	return task.DateOf(s.now().Local())
}

// RequireUser пропускает запрос, только если пользователь уже представился
func (s *TaskHandler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.TaskService.LoggedIn(r.Context()) {
			logger.Warn("HTTP: Запрос без входа",
				zap.String("path", r.URL.Path),
				zap.String("client_ip", r.RemoteAddr))
			handleBusinessError(w, service.NewUnauthorized())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// decodeJSON проверяет Content-Type и читает тело. false - ответ уже отправлен.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return false
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return false
	}
	return true
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	err := s.TaskService.HealthCheck(r.Context())
	if err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
	}
	healthCheck(w, err)
}

func (s *TaskHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request dto.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if err := s.TaskService.Login(r.Context(), request.Username); err != nil {
		handleError(w, r, err, "login")
		return
	}

	responseWithBody(w, http.StatusOK, dto.SessionResponse{
		Username: s.TaskService.Username(r.Context()),
		View:     s.TaskService.View(),
	})
}

func (s *TaskHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s.TaskService.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *TaskHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, dto.SessionResponse{
		Username: s.TaskService.Username(r.Context()),
		View:     s.TaskService.View(),
	})
}

func (s *TaskHandler) OpenForm(w http.ResponseWriter, r *http.Request) {
	s.TaskService.OpenForm()
	responseWithBody(w, http.StatusOK, s.TaskService.View())
}

func (s *TaskHandler) CancelView(w http.ResponseWriter, r *http.Request) {
	s.TaskService.Cancel()
	responseWithBody(w, http.StatusOK, s.TaskService.View())
}

// GetTasks обновляет фильтры сессии из запроса и отдаёт отфильтрованный список со счётчиками
func (s *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	status, priority, search, err := parseFilters(r, s.TaskService.View())
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}
	s.TaskService.SetFilters(status, priority, search)

	tasks, counts := s.TaskService.Tasks()
	responseWithBody(w, http.StatusOK, dto.TaskListResponse{
		Tasks:  dto.FromTaskList(tasks, s.today()),
		Counts: counts,
		View:   s.TaskService.View(),
	})
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	draft, err := createDraft(request)
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), draft)
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(created, s.today()))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := s.TaskService.GetTask(id)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(found, s.today()))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	draft, err := updateDraft(request)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, draft)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated, s.today()))
}

func (s *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	toggled, err := s.TaskService.ToggleTask(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "toggle_task")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(toggled, s.today()))
}

func (s *TaskHandler) StartEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	editing, err := s.TaskService.StartEdit(id)
	if err != nil {
		handleError(w, r, err, "start_edit")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(editing, s.today()))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	rec, err := s.TaskService.DeleteTask(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromDeleted(rec, s.TaskService.UndoWindow(), s.today()))
}

func (s *TaskHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var request dto.TagRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	tagged, err := s.TaskService.AddTag(r.Context(), id, request.Tag)
	if err != nil {
		handleError(w, r, err, "add_tag")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(tagged, s.today()))
}

func (s *TaskHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tag := chi.URLParam(r, "tag")

	untagged, err := s.TaskService.RemoveTag(r.Context(), id, tag)
	if err != nil {
		handleError(w, r, err, "remove_tag")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(untagged, s.today()))
}

func (s *TaskHandler) GetPendingUndo(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.TaskService.PendingUndo()
	if !ok {
		responseWithError(w, http.StatusNotFound, "нет удаления для отмены")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromDeleted(rec, s.TaskService.UndoWindow(), s.today()))
}

func (s *TaskHandler) UndoDelete(w http.ResponseWriter, r *http.Request) {
	restored, ok, err := s.TaskService.UndoDelete(r.Context())
	if err != nil {
		handleError(w, r, err, "undo_delete")
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	logger.Info("HTTP_OUT: Удаление отменено", zap.String("task_id", restored.ID))
	responseWithBody(w, http.StatusOK, dto.FromTask(restored, s.today()))
}

func (s *TaskHandler) DismissUndo(w http.ResponseWriter, r *http.Request) {
	s.TaskService.DismissUndo()
	w.WriteHeader(http.StatusNoContent)
}

func (s *TaskHandler) GetOverdueTasks(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	responseWithBody(w, http.StatusOK, dto.FromTaskList(s.TaskService.Overdue(today), today))
}

// ExportTasks отдаёт всю коллекцию без фильтров в JSON или YAML
func (s *TaskHandler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}

	tasks := s.TaskService.AllTasks()
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "tasks."+format))

	switch format {
	case "json":
		responseWithBody(w, http.StatusOK, tasks)
	case "yaml", "yml":
		responseWithYAML(w, http.StatusOK, tasks)
	default:
		w.Header().Del("Content-Disposition")
		handleBusinessError(w, service.NewValidationError("format", fmt.Errorf("неизвестный формат %q", format)))
	}
}
