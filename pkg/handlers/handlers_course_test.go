package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"courseadmin/pkg/apierr"
	"courseadmin/pkg/claims"
	"courseadmin/pkg/course"
	"courseadmin/pkg/handlers"
	"courseadmin/pkg/ident"
	"courseadmin/pkg/session"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCourseService struct {
	mock.Mock
}

func (m *mockCourseService) List(ctx context.Context, page int) (course.Listing, error) {
	args := m.Called(page)
	return args.Get(0).(course.Listing), args.Error(1)
}

func (m *mockCourseService) Current() course.Listing {
	return m.Called().Get(0).(course.Listing)
}

func (m *mockCourseService) Create(ctx context.Context, title string) (course.Result, error) {
	args := m.Called(title)
	return args.Get(0).(course.Result), args.Error(1)
}

func (m *mockCourseService) Rename(ctx context.Context, id ident.ID, title string) (course.Result, error) {
	args := m.Called(id, title)
	return args.Get(0).(course.Result), args.Error(1)
}

func (m *mockCourseService) Delete(ctx context.Context, id ident.ID) (course.Result, error) {
	args := m.Called(id)
	return args.Get(0).(course.Result), args.Error(1)
}

func (m *mockCourseService) TogglePublish(ctx context.Context, id ident.ID) (course.Result, error) {
	args := m.Called(id)
	return args.Get(0).(course.Result), args.Error(1)
}

var listing = course.Listing{
	Page:       1,
	PageSize:   5,
	TotalPages: 2,
	Courses: []course.Course{
		{ID: "1", Title: "Go", Status: course.StatusPublished},
		{ID: "2", Title: "SQL", Status: course.StatusDraft},
	},
}

func asAdmin(req *http.Request) *http.Request {
	s := &session.Session{AccessToken: "a", Role: claims.RoleAdmin}
	return req.WithContext(session.WithSession(req.Context(), s))
}

func TestCourseList(t *testing.T) {
	m := new(mockCourseService)
	h := handlers.NewCourseHandler(m, logger)

	t.Run("first page", func(t *testing.T) {
		m.On("List", 1).Return(listing, nil).Once()

		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/courses", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{
			"view":"courses","page":1,"pageSize":5,"totalPages":2,
			"hasPrev":false,"hasNext":true,"canEdit":false,
			"courses":[
				{"id":1,"title":"Go","status":1,"statusName":"Published"},
				{"id":2,"title":"SQL","status":0,"statusName":"Draft"}
			]}`, rr.Body.String())
	})

	t.Run("admin sees edit actions", func(t *testing.T) {
		m.On("List", 2).Return(course.Listing{Page: 2, PageSize: 5, TotalPages: 2}, nil).Once()

		rr := httptest.NewRecorder()
		h.List(rr, asAdmin(httptest.NewRequest(http.MethodGet, "/courses?page=2", nil)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"canEdit":true`)
		assert.Contains(t, rr.Body.String(), `"hasPrev":true`)
	})

	t.Run("invalid page", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/courses?page=x", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("backend down keeps listing", func(t *testing.T) {
		failed := listing
		failed.Error = "failed to load courses"
		m.On("List", 3).Return(failed, errors.New("connection refused")).Once()

		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/courses?page=3", nil))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, rr.Body.String(), `"error":"failed to load courses"`)
	})

	t.Run("session expired", func(t *testing.T) {
		m.On("List", 4).Return(listing, apierr.ErrUnauthorized).Once()

		rr := httptest.NewRecorder()
		h.List(rr, httptest.NewRequest(http.MethodGet, "/courses?page=4", nil))

		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
	})

	m.AssertExpectations(t)
}

func TestCourseActions(t *testing.T) {
	m := new(mockCourseService)
	h := handlers.NewCourseHandler(m, logger)

	router := mux.NewRouter()
	router.HandleFunc("/courses", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/courses/{id}", h.Rename).Methods(http.MethodPut)
	router.HandleFunc("/courses/{id}", h.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/courses/{id}/publish-toggle", h.TogglePublish).Methods(http.MethodPost)

	m.On("Create", "Rust").Return(course.Result{Listing: listing}, nil).Once()
	m.On("Create", " ").Return(course.Result{}, course.ErrEmptyTitle).Once()
	m.On("Rename", ident.ID("9"), "Go 2").Return(course.Result{}, course.ErrNotListed).Once()
	m.On("Delete", ident.ID("1")).Return(course.Result{Listing: listing}, errors.New("timeout")).Once()
	m.On("TogglePublish", ident.ID("2")).
		Return(course.Result{Listing: listing, Rejected: true, Message: "course has no lessons"}, nil).Once()
	m.On("TogglePublish", ident.ID("1")).Return(course.Result{}, apierr.ErrUnauthorized).Once()

	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{name: "create", method: http.MethodPost, target: "/courses", body: `{"title":"Rust"}`, expectedStatus: http.StatusOK},
		{name: "empty title", method: http.MethodPost, target: "/courses", body: `{"title":" "}`, expectedStatus: http.StatusBadRequest},
		{name: "rename unlisted", method: http.MethodPut, target: "/courses/9", body: `{"title":"Go 2"}`, expectedStatus: http.StatusNotFound},
		{name: "delete transport failure", method: http.MethodDelete, target: "/courses/1", expectedStatus: http.StatusBadGateway,
			expectedBody: `{"message":"backend unavailable, try again later"}`},
		{name: "publish rejected", method: http.MethodPost, target: "/courses/2/publish-toggle", expectedStatus: http.StatusUnprocessableEntity},
		{name: "unauthorized", method: http.MethodPost, target: "/courses/1/publish-toggle", expectedStatus: http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, jsonRequest(tt.method, tt.target, tt.body))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}
			if tt.name == "publish rejected" {
				assert.Contains(t, rr.Body.String(), `"message":"course has no lessons"`)
			}
		})
	}

	m.AssertExpectations(t)
}
