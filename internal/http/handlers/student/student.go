// Package student contains all HTTP handlers related to the Student resource.
//
// Each exported function is a factory: it receives the storage once, when
// the route is registered, and returns the http.HandlerFunc that runs on
// every request. The returned closure keeps using that storage.
//
//	router.HandleFunc("POST /api/students", student.New(store))
package student

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/cantina-api/internal/storage"
	"github.com/aanand-mishra/cantina-api/internal/types"
	"github.com/aanand-mishra/cantina-api/internal/utils/request"
	"github.com/aanand-mishra/cantina-api/internal/utils/response"
)

// Request is the body accepted by POST and PUT.
type Request struct {
	FullName  string `json:"full_name" validate:"required,max=100"`
	Classroom string `json:"classroom" validate:"required,max=20"`
}

func (req Request) student() types.Student {
	return types.Student{FullName: req.FullName, Classroom: req.Classroom}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON):
//
//	{ "full_name": "Ana Silva", "classroom": "5B" }
//
// Success response (201 Created):
//
//	{ "id": 1 }
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var req Request
		if !request.Bind(w, r, &req) {
			return
		}

		lastID, err := store.CreateStudent(r.Context(), req.student())
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		slog.Info("student created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": lastID})
	}
}

// GetByID handles GET /api/students/{id}
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, err := store.GetStudentByID(r.Context(), id)
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students?name=ana&classroom=5B
//
// name matches anywhere in the full name, ignoring case; classroom must
// match exactly. Returns [] (not null) when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		q := r.URL.Query()
		students, err := store.GetStudents(r.Context(), storage.StudentFilter{
			Name:      q.Get("name"),
			Classroom: q.Get("classroom"),
		})
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// Update handles PUT /api/students/{id}
// Both fields are required; registered_at never changes.
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		var req Request
		if !request.Bind(w, r, &req) {
			return
		}

		updated, err := store.UpdateStudentByID(r.Context(), id, req.student())
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
// The student's consumption records are deleted with it.
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if err := store.DeleteStudentByID(r.Context(), id); err != nil {
			response.StorageError(w, r, err)
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// Consumptions handles GET /api/students/{id}/consumptions
// and returns the student's history, newest first.
func Consumptions(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := request.PathID(w, r, "id")
		if !ok {
			return
		}

		history, err := store.FindConsumptionsByStudent(r.Context(), id)
		if err != nil {
			response.StorageError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, history)
	}
}
