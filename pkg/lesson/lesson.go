package lesson

import (
	"context"

	"courseadmin/pkg/ident"
)

type Lesson struct {
	ID       ident.ID `json:"id"`
	CourseID ident.ID `json:"courseId"`
	Title    string   `json:"title"`
	Order    int      `json:"order"`
}

type Summary struct {
	Title string `json:"title"`
}

// Backend is the subset of the course-authoring API the sequencer uses. The
// backend owns order contiguity; the sequencer only asks for transitions.
type Backend interface {
	CourseSummary(ctx context.Context, courseID ident.ID) (Summary, error)
	ListLessons(ctx context.Context, courseID ident.ID) ([]Lesson, error)
	CreateLesson(ctx context.Context, courseID ident.ID, title string) error
	UpdateLesson(ctx context.Context, id ident.ID, title string) error
	DeleteLesson(ctx context.Context, id ident.ID) error
	ReorderLesson(ctx context.Context, courseID, lessonID ident.ID, newOrder int) error
}

type Direction int

const (
	Earlier Direction = -1
	Later   Direction = 1
)

func (d Direction) Valid() bool {
	return d == Earlier || d == Later
}

// CanMoveEarlier reports whether the "move earlier" action should be offered.
func CanMoveEarlier(l Lesson) bool {
	return l.Order > 1
}

// CanMoveLater reports whether the "move later" action should be offered. The
// last position is decided by order, not by position in the slice.
func CanMoveLater(l Lesson, lessons []Lesson) bool {
	last := 0
	for _, other := range lessons {
		if other.Order > last {
			last = other.Order
		}
	}
	return l.Order < last
}

type ServiceLesson interface {
	Load(ctx context.Context, courseID ident.ID) (Board, error)
	Board(courseID ident.ID) (Board, bool)
	MoveLesson(ctx context.Context, l Lesson, dir Direction) (Outcome, error)
	DeleteLesson(ctx context.Context, courseID, id ident.ID) (Outcome, error)
	CreateLesson(ctx context.Context, courseID ident.ID, title string) (Outcome, error)
	RenameLesson(ctx context.Context, l Lesson, title string) (Outcome, error)
}
