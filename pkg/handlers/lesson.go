package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"courseadmin/pkg/apierr"
	"courseadmin/pkg/ident"
	"courseadmin/pkg/lesson"

	"github.com/gorilla/mux"
)

const msgCannotMove = "cannot move lesson in that direction"

var directions = map[string]lesson.Direction{
	"up":   lesson.Earlier,
	"down": lesson.Later,
}

type lessonRow struct {
	ID          ident.ID `json:"id"`
	CourseID    ident.ID `json:"courseId"`
	Title       string   `json:"title"`
	Order       int      `json:"order"`
	CanMoveUp   bool     `json:"canMoveUp"`
	CanMoveDown bool     `json:"canMoveDown"`
}

type boardView struct {
	View        string      `json:"view"`
	CourseID    ident.ID    `json:"courseId"`
	CourseTitle string      `json:"courseTitle"`
	Lessons     []lessonRow `json:"lessons"`
	Error       string      `json:"error,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// newBoardView renders lessons in the order the backend returned them.
func newBoardView(b lesson.Board) boardView {
	v := boardView{
		View:        "lessons",
		CourseID:    b.CourseID,
		CourseTitle: b.CourseTitle,
		Lessons:     make([]lessonRow, 0, len(b.Lessons)),
		Error:       b.Error,
	}
	for _, l := range b.Lessons {
		v.Lessons = append(v.Lessons, lessonRow{
			ID:          l.ID,
			CourseID:    l.CourseID,
			Title:       l.Title,
			Order:       l.Order,
			CanMoveUp:   lesson.CanMoveEarlier(l),
			CanMoveDown: lesson.CanMoveLater(l, b.Lessons),
		})
	}
	return v
}

type LessonHandler struct {
	Service lesson.ServiceLesson
	Logger  *slog.Logger
}

func NewLessonHandler(service lesson.ServiceLesson, logger *slog.Logger) *LessonHandler {
	return &LessonHandler{
		Service: service,
		Logger:  logger,
	}
}

func (h *LessonHandler) Board(w http.ResponseWriter, r *http.Request) {
	courseID := ident.ID(mux.Vars(r)[muxVarCourseID])

	b, err := h.Service.Load(r.Context(), courseID)
	if err != nil {
		h.writeBoardFailure(w, r, "load lessons", b, err)
		return
	}

	writeJSON(w, h.Logger, http.StatusOK, newBoardView(b))
}

func (h *LessonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req titleForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	out, err := h.Service.CreateLesson(r.Context(), ident.ID(mux.Vars(r)[muxVarCourseID]), req.Title)
	h.writeOutcome(w, r, "create lesson", out, err)
}

func (h *LessonHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req titleForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	l, _, err := h.lookup(r.Context(), mux.Vars(r))
	if err != nil {
		writeFailure(w, r, h.Logger, "rename lesson", err)
		return
	}

	out, err := h.Service.RenameLesson(r.Context(), l, req.Title)
	h.writeOutcome(w, r, "rename lesson", out, err)
}

func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	out, err := h.Service.DeleteLesson(r.Context(), ident.ID(vars[muxVarCourseID]), ident.ID(vars[muxVarLessonID]))
	h.writeOutcome(w, r, "delete lesson", out, err)
}

// Move only forwards moves the board offers: the first lesson cannot go up
// and the last cannot go down.
func (h *LessonHandler) Move(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	dir, ok := directions[vars[muxVarDirection]]
	if !ok {
		writeError(w, http.StatusBadRequest, typeMessage, "direction must be up or down")
		return
	}

	l, b, err := h.lookup(r.Context(), vars)
	if err != nil {
		writeFailure(w, r, h.Logger, "move lesson", err)
		return
	}

	offered := lesson.CanMoveEarlier(l)
	if dir == lesson.Later {
		offered = lesson.CanMoveLater(l, b.Lessons)
	}
	if !offered {
		v := newBoardView(b)
		v.Message = msgCannotMove
		writeJSON(w, h.Logger, http.StatusConflict, v)
		return
	}

	out, err := h.Service.MoveLesson(r.Context(), l, dir)
	h.writeOutcome(w, r, "move lesson", out, err)
}

// lookup finds a lesson on the course's board, loading the board if the
// lesson is not on it yet.
func (h *LessonHandler) lookup(ctx context.Context, vars map[string]string) (lesson.Lesson, lesson.Board, error) {
	courseID := ident.ID(vars[muxVarCourseID])
	lessonID := ident.ID(vars[muxVarLessonID])

	b, ok := h.Service.Board(courseID)
	if l, found := b.Find(lessonID); ok && found {
		return l, b, nil
	}

	b, err := h.Service.Load(ctx, courseID)
	if err != nil {
		return lesson.Lesson{}, b, err
	}
	l, found := b.Find(lessonID)
	if !found {
		return lesson.Lesson{}, b, errLessonNotFound
	}
	return l, b, nil
}

func (h *LessonHandler) writeOutcome(w http.ResponseWriter, r *http.Request, action string, out lesson.Outcome, err error) {
	if err != nil {
		h.writeBoardFailure(w, r, action, out.Board, err)
		return
	}

	v := newBoardView(out.Board)
	if out.Rejected {
		v.Message = out.Message
		writeJSON(w, h.Logger, http.StatusUnprocessableEntity, v)
		return
	}

	if ok := writeJSON(w, h.Logger, http.StatusOK, v); ok {
		h.Logger.Info(action, "course", out.Board.CourseID)
	}
}

func (h *LessonHandler) writeBoardFailure(w http.ResponseWriter, r *http.Request, action string, b lesson.Board, err error) {
	if b.CourseID.IsZero() || apierr.IsUnauthorized(err) {
		writeFailure(w, r, h.Logger, action, err)
		return
	}
	h.Logger.Error(action, "error", err)
	v := newBoardView(b)
	v.Message = msgBackendUnavailable
	writeJSON(w, h.Logger, http.StatusBadGateway, v)
}
