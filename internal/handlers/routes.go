package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Routes регистрирует все маршруты API. Маршруты /tasks требуют входа.
func (s *TaskHandler) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.GetSession)        // GET /session
		r.Post("/login", s.Login)       // POST /session/login
		r.Post("/logout", s.Logout)     // POST /session/logout
		r.Post("/form", s.OpenForm)     // POST /session/form
		r.Post("/cancel", s.CancelView) // POST /session/cancel
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(s.RequireUser)

		r.Get("/", s.GetTasks)  // GET /tasks
		r.Post("/", s.PostTask) // POST /tasks

		r.Get("/undo", s.GetPendingUndo) // GET /tasks/undo
		r.Post("/undo", s.UndoDelete)    // POST /tasks/undo
		r.Delete("/undo", s.DismissUndo) // DELETE /tasks/undo

		r.Get("/overdue", s.GetOverdueTasks) // GET /tasks/overdue
		r.Get("/export", s.ExportTasks)      // GET /tasks/export

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", s.UpdateTaskByID)    // PUT /tasks/{id}
			r.Delete("/", s.DeleteTaskByID) // DELETE /tasks/{id}

			r.Post("/toggle", s.ToggleTask)      // POST /tasks/{id}/toggle
			r.Post("/edit", s.StartEdit)         // POST /tasks/{id}/edit
			r.Post("/tags", s.AddTag)            // POST /tasks/{id}/tags
			r.Delete("/tags/{tag}", s.RemoveTag) // DELETE /tasks/{id}/tags/{tag}
		})
	})
}
