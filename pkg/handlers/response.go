package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"courseadmin/pkg/apierr"
	"courseadmin/pkg/course"
	"courseadmin/pkg/lesson"
	"courseadmin/pkg/middleware"
	"courseadmin/pkg/user"
)

const (
	typeError   string = "error"
	typeMessage string = "message"

	muxVarID        string = "id"
	muxVarCourseID  string = "courseId"
	muxVarLessonID  string = "lessonId"
	muxVarDirection string = "direction"
)

const msgBackendUnavailable = "backend unavailable, try again later"

var errLessonNotFound = errors.New("lesson not found")

type titleForm struct {
	Title string `json:"title"`
}

func DecodeJSONBody(w http.ResponseWriter, r *http.Request, req any) bool {
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		writeError(w, http.StatusBadRequest, typeError, "invalid Content-Type")
		return false
	}

	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, typeError, "bad json")
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) bool {
	resp, err := json.Marshal(data)
	if err != nil {
		logger.Error("Failed to serialize JSON response", "error", err)
		writeError(w, http.StatusInternalServerError, typeError, "failed json marshal")
		return false
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(resp); err != nil {
		logger.Error("Failed to write response to client", "error", err)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, field, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{field: msg}); err != nil {
		return
	}
}

// writeFailure answers a failed action. A backend 401 has already ended the
// session, so the caller is sent back to the entry point.
func writeFailure(w http.ResponseWriter, r *http.Request, logger *slog.Logger, action string, err error) {
	var formErr *user.FormError

	switch {
	case apierr.IsUnauthorized(err):
		logger.Info("session ended", "action", action)
		http.Redirect(w, r, middleware.EntryPoint, http.StatusSeeOther)
	case errors.Is(err, user.ErrMissingFields):
		writeError(w, http.StatusBadRequest, typeMessage, user.ErrMissingFields.Error())
	case errors.Is(err, course.ErrEmptyTitle),
		errors.Is(err, lesson.ErrEmptyTitle),
		errors.Is(err, lesson.ErrInvalidDirection):
		writeError(w, http.StatusBadRequest, typeMessage, err.Error())
	case errors.As(err, &formErr):
		writeError(w, http.StatusUnprocessableEntity, typeMessage, formErr.Message)
	case errors.Is(err, course.ErrNotListed), errors.Is(err, errLessonNotFound):
		writeError(w, http.StatusNotFound, typeMessage, err.Error())
	default:
		logger.Error(action, "error", err)
		writeError(w, http.StatusBadGateway, typeMessage, msgBackendUnavailable)
	}
}
