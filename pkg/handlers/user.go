package handlers

import (
	"log/slog"
	"net/http"

	"courseadmin/pkg/claims"
	"courseadmin/pkg/middleware"
	"courseadmin/pkg/session"
	"courseadmin/pkg/user"
)

type registerForm struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type sessionView struct {
	View  string `json:"view"`
	State string `json:"state"`
	Role  string `json:"role,omitempty"`
}

type Handler struct {
	Service  user.ServiceInterface
	Sessions middleware.SessionState
	Logger   *slog.Logger
}

func NewUserHandler(service user.ServiceInterface, sessions middleware.SessionState, logger *slog.Logger) *Handler {
	return &Handler{
		Service:  service,
		Sessions: sessions,
		Logger:   logger,
	}
}

// Entry is the unauthenticated entry point. It reports the session state so
// the caller knows whether to log in or go to the courses.
func (h *Handler) Entry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Logger, http.StatusOK, h.view())
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req user.LoginForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	if err := h.Service.Login(r.Context(), req); err != nil {
		writeFailure(w, r, h.Logger, "login", err)
		return
	}

	if ok := writeJSON(w, h.Logger, http.StatusOK, h.view()); ok {
		h.Logger.Info("login", "email", req.Email)
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	role := claims.RoleUser
	if claims.Role(req.Role) == claims.RoleAdmin {
		role = claims.RoleAdmin
	}

	form := user.RegisterForm{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     role,
	}
	if err := h.Service.Register(r.Context(), form); err != nil {
		writeFailure(w, r, h.Logger, "register", err)
		return
	}

	if ok := writeJSON(w, h.Logger, http.StatusOK, h.view()); ok {
		h.Logger.Info("register", "email", req.Email, "role", role)
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Logout(r.Context()); err != nil {
		h.Logger.Error("logout", "error", err)
		writeError(w, http.StatusInternalServerError, typeMessage, "failed to log out")
		return
	}

	writeJSON(w, h.Logger, http.StatusOK, h.view())
}

func (h *Handler) view() sessionView {
	v := sessionView{View: "entry", State: h.Sessions.State().String()}
	if s, ok := h.Sessions.Current(); ok {
		v.Role = string(s.Role)
	}
	return v
}

func isAdmin(r *http.Request) bool {
	s, ok := session.FromContext(r.Context())
	return ok && s.IsAdmin()
}
