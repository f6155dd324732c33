package routing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"courseadmin/pkg/claims"
	"courseadmin/pkg/course"
	"courseadmin/pkg/handlers"
	"courseadmin/pkg/lesson"
	"courseadmin/pkg/middleware"
	"courseadmin/pkg/user"
)

const (
	idPattern = "[a-zA-Z0-9-]+"
	direction = "up|down"
)

type Services struct {
	Sessions middleware.SessionState
	Users    user.ServiceInterface
	Courses  course.ServiceCourse
	Lessons  lesson.ServiceLesson
}

func NewRouter(s Services, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Panic(logger))
	r.Use(middleware.Loading(s.Sessions))

	InitRoutes(r, s, logger)
	ServeFallback(r, logger)
	return r
}

func InitRoutes(r *mux.Router, s Services, logger *slog.Logger) {
	userHandler := handlers.NewUserHandler(s.Users, s.Sessions, logger)
	courseHandler := handlers.NewCourseHandler(s.Courses, logger)
	lessonHandler := handlers.NewLessonHandler(s.Lessons, logger)

	admin := middleware.RequireRole(claims.RoleAdmin)

	/* -+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+ */

	coursesRouter := r.PathPrefix("/courses").Subrouter()
	lessonsRouter := r.PathPrefix("/course/{courseId:" + idPattern + "}/lessons").Subrouter()
	coursesRouter.Use(middleware.RequireSession(s.Sessions))
	lessonsRouter.Use(middleware.RequireSession(s.Sessions))

	/* entry and account */
	r.HandleFunc("/", userHandler.Entry).Methods("GET").Name("entry")
	r.HandleFunc("/login", userHandler.Login).Methods("POST").Name("login")
	r.HandleFunc("/register", userHandler.Register).Methods("POST").Name("register")
	r.HandleFunc("/logout", userHandler.Logout).Methods("POST").Name("logout")

	/* courses */
	coursesRouter.HandleFunc("", courseHandler.List).Methods("GET").Name("courses")
	coursesRouter.Handle("", admin(http.HandlerFunc(courseHandler.Create))).Methods("POST")
	coursesRouter.Handle("/{id:"+idPattern+"}", admin(http.HandlerFunc(courseHandler.Rename))).Methods("PUT")
	coursesRouter.Handle("/{id:"+idPattern+"}", admin(http.HandlerFunc(courseHandler.Delete))).Methods("DELETE")
	coursesRouter.Handle("/{id:"+idPattern+"}/publish-toggle", admin(http.HandlerFunc(courseHandler.TogglePublish))).Methods("POST")

	/* lessons */
	lessonsRouter.HandleFunc("", lessonHandler.Board).Methods("GET").Name("lessons")
	lessonsRouter.HandleFunc("", lessonHandler.Create).Methods("POST")
	lessonsRouter.HandleFunc("/{lessonId:"+idPattern+"}", lessonHandler.Rename).Methods("PUT")
	lessonsRouter.HandleFunc("/{lessonId:"+idPattern+"}", lessonHandler.Delete).Methods("DELETE")
	lessonsRouter.HandleFunc("/{lessonId:"+idPattern+"}/move/{direction:(?:"+direction+")}", lessonHandler.Move).Methods("POST")
}

func ServeFallback(r *mux.Router, logger *slog.Logger) {
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		if _, err := w.Write([]byte(`{"message":"not found"}`)); err != nil {
			logger.Error("failed to write fallback JSON", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
	})
}

// StartServer serves until ctx is done, then shuts down gracefully.
func StartServer(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h}

	errc := make(chan error, 1)
	go func() {
		logger.Info("console is running", "url", "http://"+addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
