// Package api serves the task, category, tag and user services over HTTP.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/ManiEids/vef2hop2/domain"
	"github.com/ManiEids/vef2hop2/service"
)

// HeaderIdempotencyKey lets clients retry task creation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// Register wires up all API routes on the provided Echo instance. deduper
// may be nil.
func Register(e *echo.Echo, svc *service.Service, auth Authenticator, deduper Deduper, logger *log.Logger) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	h := &handlers{svc: svc, auth: auth, deduper: deduper, log: logger}

	e.GET("/tasks", h.listTasks)
	e.GET("/tasks/counts", h.taskCounts)
	e.GET("/tasks/:id", h.getTask)
	e.POST("/tasks", h.createTask)
	e.POST("/tasks/sync", h.syncTasks)
	e.PUT("/tasks/:id", h.updateTask)
	e.POST("/tasks/:id/complete", h.completeTask)
	e.DELETE("/tasks/:id", h.deleteTask)

	e.GET("/categories", h.listCategories)
	e.GET("/categories/:id", h.getCategory)
	e.POST("/categories", h.createCategory)
	e.PUT("/categories/:id", h.updateCategory)
	e.DELETE("/categories/:id", h.deleteCategory)

	e.GET("/tags", h.listTags)
	e.POST("/tags", h.createTag)

	e.POST("/users/login", h.login)
	e.POST("/users/register", h.register)
	e.GET("/users/me", h.me)

	e.GET("/healthz", h.healthz)
}

type handlers struct {
	svc     *service.Service
	auth    Authenticator
	deduper Deduper
	log     *log.Logger
}

func (h *handlers) healthz(c echo.Context) error {
	if _, err := h.svc.ListTags(c.Request().Context()); err != nil {
		h.log.WithError(err).Warn("health check failed")
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "storage unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// requireUser resolves the caller or fails with ErrUnauthorized.
func (h *handlers) requireUser(c echo.Context) (domain.User, error) {
	if h.auth == nil {
		return domain.User{}, fmt.Errorf("%w: authentication is not configured", domain.ErrUnauthorized)
	}
	return h.auth.UserFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
}

// optionalUser returns nil when no Authorization header is sent.
func (h *handlers) optionalUser(c echo.Context) (*domain.User, error) {
	if strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)) == "" {
		return nil, nil
	}
	u, err := h.requireUser(c)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func readJSON(c echo.Context, v any) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodySize+1))
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return fmt.Errorf("%w: read body: %v", domain.ErrInvalid, err)
	}
	if len(data) > maxBodySize {
		return errBodyTooLarge
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: invalid body", domain.ErrInvalid)
	}
	return nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrInvalid, name)
	}
	return n, nil
}
