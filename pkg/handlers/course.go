package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"courseadmin/pkg/apierr"
	"courseadmin/pkg/course"
	"courseadmin/pkg/ident"

	"github.com/gorilla/mux"
)

type courseRow struct {
	ID         ident.ID      `json:"id"`
	Title      string        `json:"title"`
	Status     course.Status `json:"status"`
	StatusName string        `json:"statusName"`
}

type listingView struct {
	View       string      `json:"view"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
	HasPrev    bool        `json:"hasPrev"`
	HasNext    bool        `json:"hasNext"`
	Courses    []courseRow `json:"courses"`
	CanEdit    bool        `json:"canEdit"`
	Error      string      `json:"error,omitempty"`
	Message    string      `json:"message,omitempty"`
}

func newListingView(l course.Listing, canEdit bool) listingView {
	v := listingView{
		View:       "courses",
		Page:       l.Page,
		PageSize:   l.PageSize,
		TotalPages: l.TotalPages,
		HasPrev:    l.HasPrev(),
		HasNext:    l.HasNext(),
		Courses:    make([]courseRow, 0, len(l.Courses)),
		CanEdit:    canEdit,
		Error:      l.Error,
	}
	for _, c := range l.Courses {
		v.Courses = append(v.Courses, courseRow{
			ID:         c.ID,
			Title:      c.Title,
			Status:     c.Status,
			StatusName: c.Status.String(),
		})
	}
	return v
}

type CourseHandler struct {
	Service course.ServiceCourse
	Logger  *slog.Logger
}

func NewCourseHandler(service course.ServiceCourse, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{
		Service: service,
		Logger:  logger,
	}
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, typeMessage, "invalid page")
			return
		}
		page = n
	}

	l, err := h.Service.List(r.Context(), page)
	if err != nil {
		h.writeListingFailure(w, r, "list courses", l, err)
		return
	}

	writeJSON(w, h.Logger, http.StatusOK, newListingView(l, isAdmin(r)))
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req titleForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	res, err := h.Service.Create(r.Context(), req.Title)
	h.writeResult(w, r, "create course", res, err)
}

func (h *CourseHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req titleForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	res, err := h.Service.Rename(r.Context(), ident.ID(mux.Vars(r)[muxVarID]), req.Title)
	h.writeResult(w, r, "rename course", res, err)
}

func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Delete(r.Context(), ident.ID(mux.Vars(r)[muxVarID]))
	h.writeResult(w, r, "delete course", res, err)
}

func (h *CourseHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.TogglePublish(r.Context(), ident.ID(mux.Vars(r)[muxVarID]))
	h.writeResult(w, r, "toggle course status", res, err)
}

func (h *CourseHandler) writeResult(w http.ResponseWriter, r *http.Request, action string, res course.Result, err error) {
	if err != nil {
		h.writeListingFailure(w, r, action, res.Listing, err)
		return
	}

	v := newListingView(res.Listing, isAdmin(r))
	if res.Rejected {
		v.Message = res.Message
		writeJSON(w, h.Logger, http.StatusUnprocessableEntity, v)
		return
	}

	if ok := writeJSON(w, h.Logger, http.StatusOK, v); ok {
		h.Logger.Info(action, "page", res.Listing.Page)
	}
}

// writeListingFailure keeps showing the listing when the backend could not be
// reached; every other failure goes through writeFailure.
func (h *CourseHandler) writeListingFailure(w http.ResponseWriter, r *http.Request, action string, l course.Listing, err error) {
	if l.Error == "" || apierr.IsUnauthorized(err) {
		writeFailure(w, r, h.Logger, action, err)
		return
	}
	h.Logger.Error(action, "error", err)
	writeJSON(w, h.Logger, http.StatusBadGateway, newListingView(l, isAdmin(r)))
}
