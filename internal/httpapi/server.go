// Package httpapi exposes the timetable over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/javiermolinar/aula/internal/scheduler"
)

// Server is the HTTP front end of a Scheduler.
type Server struct {
	app      *fiber.App
	sched    *scheduler.Scheduler
	validate *validator.Validate
	log      *slog.Logger
}

// New builds a Server with every route registered.
func New(sched *scheduler.Scheduler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		sched:    sched,
		validate: validator.New(),
		log:      logger,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "aula",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(RequestID())
	s.app.Use(AccessLog(s.log))

	s.app.Get("/healthz", s.health)

	api := s.app.Group("/api/v1")
	api.Get("/sessions", s.listSessions)
	api.Post("/sessions", s.createSession)
	api.Get("/sessions/:id", s.getSession)
	api.Put("/sessions/:id", s.updateSession)
	api.Delete("/sessions/:id", s.deleteSession)
	api.Get("/sessions/:id/free", s.freeSlots)

	api.Get("/conflicts", s.listConflicts)
	api.Get("/conflicts.csv", s.exportConflicts)

	api.Get("/grid", s.grid)
	api.Get("/grid/:day", s.lookup)

	api.Get("/workload", s.workload)
}

// App returns the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// handleError is the fallback for errors handlers return instead of writing.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.ErrorContext(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
