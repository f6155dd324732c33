package lesson

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"courseadmin/internal/flight"
	"courseadmin/pkg/apierr"
	"courseadmin/pkg/ident"
)

var (
	ErrEmptyTitle       = errors.New("lesson title is required")
	ErrInvalidDirection = errors.New("direction must be -1 or +1")
)

const (
	msgCannotMove = "cannot move lesson in that direction"
	msgNotDeleted = "failed to delete lesson"
	msgNotSaved   = "failed to save lesson"
	msgLoadFailed = "failed to load lessons"
)

// Board is the lesson list of one course as last fetched from the backend.
type Board struct {
	CourseID    ident.ID
	CourseTitle string
	Lessons     []Lesson
	Error       string
}

func (b Board) clone() Board {
	out := b
	if b.Lessons != nil {
		out.Lessons = make([]Lesson, len(b.Lessons))
		copy(out.Lessons, b.Lessons)
	}
	return out
}

func (b Board) Find(id ident.ID) (Lesson, bool) {
	for _, l := range b.Lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

// Outcome is the result of a mutation. Rejected outcomes carry the reason to
// show; the board is then exactly what it was before the call.
type Outcome struct {
	Board    Board
	Rejected bool
	Message  string
}

// Sequencer keeps each course's displayed lesson order in step with the
// backend. It never renumbers locally: every successful mutation is followed
// by a full refetch that replaces the board.
type Sequencer struct {
	backend Backend
	logger  *slog.Logger

	mu      sync.Mutex
	boards  map[ident.ID]*Board
	// fetch generations per course: started is the newest fetch begun,
	// applied the newest one whose result is on the board.
	started map[ident.ID]uint64
	applied map[ident.ID]uint64

	inflight flight.Group
}

func NewSequencer(backend Backend, logger *slog.Logger) *Sequencer {
	return &Sequencer{
		backend: backend,
		logger:  logger,
		boards:  make(map[ident.ID]*Board),
		started: make(map[ident.ID]uint64),
		applied: make(map[ident.ID]uint64),
	}
}

// Board returns the last fetched board of a course.
func (s *Sequencer) Board(courseID ident.ID) (Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[courseID]
	if !ok {
		return Board{CourseID: courseID}, false
	}
	return b.clone(), true
}

// Load fetches the course title and its lessons and replaces the board.
func (s *Sequencer) Load(ctx context.Context, courseID ident.ID) (Board, error) {
	return s.refresh(ctx, courseID)
}

// MoveLesson asks the backend to put l at l.Order+dir. The caller decides
// whether the move is offered at all (see CanMoveEarlier and CanMoveLater);
// the backend still has the final word.
func (s *Sequencer) MoveLesson(ctx context.Context, l Lesson, dir Direction) (Outcome, error) {
	if !dir.Valid() {
		return Outcome{}, ErrInvalidDirection
	}
	newOrder := l.Order + int(dir)

	key := fmt.Sprintf("move:%s:%s:%d", l.CourseID, l.ID, dir)
	return s.mutate(ctx, l.CourseID, key, msgCannotMove, func(ctx context.Context) error {
		return s.backend.ReorderLesson(ctx, l.CourseID, l.ID, newOrder)
	})
}

func (s *Sequencer) DeleteLesson(ctx context.Context, courseID, id ident.ID) (Outcome, error) {
	key := fmt.Sprintf("delete:%s:%s", courseID, id)
	return s.mutate(ctx, courseID, key, msgNotDeleted, func(ctx context.Context) error {
		return s.backend.DeleteLesson(ctx, id)
	})
}

// CreateLesson appends a lesson; the backend assigns its order.
func (s *Sequencer) CreateLesson(ctx context.Context, courseID ident.ID, title string) (Outcome, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Outcome{}, ErrEmptyTitle
	}
	key := fmt.Sprintf("create:%s:%s", courseID, title)
	return s.mutate(ctx, courseID, key, msgNotSaved, func(ctx context.Context) error {
		return s.backend.CreateLesson(ctx, courseID, title)
	})
}

func (s *Sequencer) RenameLesson(ctx context.Context, l Lesson, title string) (Outcome, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Outcome{}, ErrEmptyTitle
	}
	key := fmt.Sprintf("rename:%s:%s", l.ID, title)
	return s.mutate(ctx, l.CourseID, key, msgNotSaved, func(ctx context.Context) error {
		return s.backend.UpdateLesson(ctx, l.ID, title)
	})
}

// mutate runs call once per key at a time, then refetches. Concurrent
// duplicates of the same action share the in-flight backend request.
func (s *Sequencer) mutate(ctx context.Context, courseID ident.ID, key, fallback string, call func(context.Context) error) (Outcome, error) {
	_, shared, err := s.inflight.Do(ctx, key, func(ctx context.Context) (any, error) {
		return nil, call(ctx)
	})
	if shared {
		s.logger.Debug("duplicate submission joined", "action", key)
	}

	if err != nil {
		before, _ := s.Board(courseID)
		if msg, ok := apierr.Rejection(err); ok {
			if msg == "" {
				msg = fallback
			}
			s.logger.Info("backend rejected lesson change", "action", key, "reason", msg)
			return Outcome{Board: before, Rejected: true, Message: msg}, nil
		}
		s.logger.Error("lesson change failed", "action", key, "error", err)
		return Outcome{Board: before}, err
	}

	b, err := s.refresh(ctx, courseID)
	return Outcome{Board: b}, err
}

// refresh fetches the board. Fetches may finish out of order; a result older
// than the one already on the board is dropped and the newer board returned.
func (s *Sequencer) refresh(ctx context.Context, courseID ident.ID) (Board, error) {
	s.mu.Lock()
	s.started[courseID]++
	gen := s.started[courseID]
	s.mu.Unlock()

	summary, err := s.backend.CourseSummary(ctx, courseID)
	var lessons []Lesson
	if err == nil {
		lessons, err = s.backend.ListLessons(ctx, courseID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen < s.applied[courseID] {
		s.logger.Debug("dropped stale lesson fetch", "course", courseID)
		return s.boards[courseID].clone(), err
	}
	s.applied[courseID] = gen

	if err != nil {
		s.logger.Error("load lessons", "course", courseID, "error", err)
		b, ok := s.boards[courseID]
		if !ok {
			b = &Board{CourseID: courseID}
			s.boards[courseID] = b
		}
		b.Error = msgLoadFailed
		return b.clone(), err
	}

	for i := range lessons {
		if lessons[i].CourseID.IsZero() {
			lessons[i].CourseID = courseID
		}
	}
	b := &Board{
		CourseID:    courseID,
		CourseTitle: summary.Title,
		Lessons:     lessons,
	}
	s.boards[courseID] = b
	return b.clone(), nil
}
