package course

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"courseadmin/pkg/ident"
)

type Status int

const (
	StatusDraft     Status = 0
	StatusPublished Status = 1
)

func (s Status) String() string {
	if s == StatusPublished {
		return "Published"
	}
	return "Draft"
}

// UnmarshalJSON accepts the numeric enum and its name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Status(n)
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("decode course status: %w", err)
	}
	switch strings.ToLower(name) {
	case "published":
		*s = StatusPublished
	case "draft":
		*s = StatusDraft
	default:
		return fmt.Errorf("unknown course status %q", name)
	}
	return nil
}

type Course struct {
	ID     ident.ID `json:"id"`
	Title  string   `json:"title"`
	Status Status   `json:"status"`
}

func (c Course) Published() bool {
	return c.Status == StatusPublished
}

// Page is one page of the course search endpoint.
type Page struct {
	Courses    []Course `json:"data"`
	TotalPages int      `json:"totalPages"`
}

type Backend interface {
	SearchCourses(ctx context.Context, page, pageSize int) (Page, error)
	CreateCourse(ctx context.Context, title string) error
	UpdateCourse(ctx context.Context, c Course) error
	DeleteCourse(ctx context.Context, id ident.ID) error
	PublishCourse(ctx context.Context, id ident.ID) error
	UnpublishCourse(ctx context.Context, id ident.ID) error
}
