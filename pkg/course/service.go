package course

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

const DefaultPageSize = 5

var (
	ErrEmptyTitle = errors.New("course title is required")
	ErrNotListed  = errors.New("course is not in the current listing")
)

const (
	msgNotSaved      = "failed to save course"
	msgNotDeleted    = "failed to delete course"
	msgStatusChanged = "failed to change status"
	msgLoadFailed    = "failed to load courses"
)

// Listing is the page of courses currently on screen.
type Listing struct {
	Page       int
	PageSize   int
	TotalPages int
	Courses    []Course
	Error      string
}

func (l Listing) HasPrev() bool {
	return l.Page > 1
}

func (l Listing) HasNext() bool {
	return l.Page < l.TotalPages
}

func (l Listing) clone() Listing {
	out := l
	if l.Courses != nil {
		out.Courses = append([]Course(nil), l.Courses...)
	}
	return out
}

type Result struct {
	Listing  Listing
	Rejected bool
	Message  string
}

type ServiceCourse interface {
	List(ctx context.Context, page int) (Listing, error)
	Current() Listing
	Create(ctx context.Context, title string) (Result, error)
	Rename(ctx context.Context, id ident.ID, title string) (Result, error)
	Delete(ctx context.Context, id ident.ID) (Result, error)
	TogglePublish(ctx context.Context, id ident.ID) (Result, error)
}

type Service struct {
	backend  Backend
	pageSize int
	logger   *slog.Logger

	mu      sync.Mutex
	current Listing

	inflight flight.Group
}

func NewService(backend Backend, pageSize int, logger *slog.Logger) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{
		backend:  backend,
		pageSize: pageSize,
		logger:   logger,
		current:  Listing{Page: 1, PageSize: pageSize},
	}
}

func (s *Service) Current() Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// List fetches a page and makes it the current listing. Pages start at 1.
func (s *Service) List(ctx context.Context, page int) (Listing, error) {
	if page < 1 {
		page = 1
	}

	p, err := s.backend.SearchCourses(ctx, page, s.pageSize)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Error("load courses", "page", page, "error", err)
		s.current.Error = msgLoadFailed
		return s.current.clone(), err
	}

	s.current = Listing{
		Page:       page,
		PageSize:   s.pageSize,
		TotalPages: p.TotalPages,
		Courses:    p.Courses,
	}
	return s.current.clone(), nil
}

func (s *Service) Create(ctx context.Context, title string) (Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{}, ErrEmptyTitle
	}
	return s.mutate(ctx, "create:"+title, msgNotSaved, func(ctx context.Context) error {
		return s.backend.CreateCourse(ctx, title)
	})
}

// Rename keeps the course's current status; the update endpoint takes the
// whole course.
func (s *Service) Rename(ctx context.Context, id ident.ID, title string) (Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{}, ErrEmptyTitle
	}
	c, ok := s.find(id)
	if !ok {
		return Result{}, ErrNotListed
	}
	c.Title = title
	return s.mutate(ctx, fmt.Sprintf("rename:%s:%s", id, title), msgNotSaved, func(ctx context.Context) error {
		return s.backend.UpdateCourse(ctx, c)
	})
}

func (s *Service) Delete(ctx context.Context, id ident.ID) (Result, error) {
	return s.mutate(ctx, "delete:"+id.String(), msgNotDeleted, func(ctx context.Context) error {
		return s.backend.DeleteCourse(ctx, id)
	})
}

// TogglePublish unpublishes a published course and publishes anything else.
// The backend may refuse, e.g. for a course without lessons.
func (s *Service) TogglePublish(ctx context.Context, id ident.ID) (Result, error) {
	c, ok := s.find(id)
	if !ok {
		return Result{}, ErrNotListed
	}
	return s.mutate(ctx, "toggle:"+id.String(), msgStatusChanged, func(ctx context.Context) error {
		if c.Published() {
			return s.backend.UnpublishCourse(ctx, id)
		}
		return s.backend.PublishCourse(ctx, id)
	})
}

func (s *Service) find(id ident.ID) (Course, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.current.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

func (s *Service) mutate(ctx context.Context, key, fallback string, call func(context.Context) error) (Result, error) {
	_, _, err := s.inflight.Do(ctx, key, func(ctx context.Context) (any, error) {
		return nil, call(ctx)
	})
	if err != nil {
		if msg, ok := apierr.Rejection(err); ok {
			if msg == "" {
				msg = fallback
			}
			s.logger.Info("backend rejected course change", "action", key, "reason", msg)
			return Result{Listing: s.Current(), Rejected: true, Message: msg}, nil
		}
		s.logger.Error("course change failed", "action", key, "error", err)
		return Result{Listing: s.Current()}, err
	}

	page := s.Current().Page
	l, err := s.List(ctx, page)
	return Result{Listing: l}, err
}
