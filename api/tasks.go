package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ManiEids/vef2hop2/domain"
)

func taskQueryFromRequest(c echo.Context) (domain.TaskQuery, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return domain.TaskQuery{}, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return domain.TaskQuery{}, err
	}
	return domain.TaskQuery{
		Page:           page,
		Limit:          limit,
		CategoryID:     c.QueryParam("category"),
		Tag:            c.QueryParam("tag"),
		Status:         c.QueryParam("status"),
		SortBy:         c.QueryParam("sort"),
		SortOrder:      c.QueryParam("order"),
		IncludeDeleted: c.QueryParam("deleted") == "true",
	}, nil
}

func (h *handlers) listTasks(c echo.Context) (err error) {
	ctx := c.Request().Context()
	metrics, spanCtx := newTaskRequestMetrics(ctx, h.log)
	if spanCtx != nil {
		c.SetRequest(c.Request().WithContext(spanCtx))
		ctx = spanCtx
	}
	defer func() {
		metrics.Log(c.Response().Status, err)
	}()

	q, qErr := taskQueryFromRequest(c)
	if qErr != nil {
		metrics.SetErrorStage("invalid_query")
		return writeError(c, qErr)
	}
	metrics.SetFiltered(q.CategoryID != "" || q.Tag != "" || (q.Status != "" && q.Status != domain.StatusAll))

	fetchStart := time.Now()
	page, fetchErr := h.svc.ListTasks(ctx, q)
	metrics.ObserveFetch(time.Since(fetchStart))
	if fetchErr != nil {
		if errors.Is(fetchErr, domain.ErrInvalid) {
			metrics.SetErrorStage("invalid_query")
		} else {
			metrics.SetErrorStage("storage")
		}
		return writeError(c, fetchErr)
	}
	metrics.SetPage(page.CurrentPage, len(page.Items), page.Count)

	encodeStart := time.Now()
	err = c.JSON(http.StatusOK, page)
	metrics.ObserveEncode(time.Since(encodeStart))
	if err != nil {
		metrics.SetErrorStage("encode_response")
	}
	return err
}

func (h *handlers) taskCounts(c echo.Context) error {
	counts, err := h.svc.TaskCounts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *handlers) getTask(c echo.Context) error {
	t, err := h.svc.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *handlers) createTask(c echo.Context) error {
	user, err := h.requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in domain.TaskInput
	if err := readJSON(c, &in); err != nil {
		return writeError(c, err)
	}

	ctx := c.Request().Context()
	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if key != "" && h.deduper != nil {
		added, derr := h.deduper.Add(ctx, user.ID, key)
		switch {
		case derr != nil:
			h.log.WithError(derr).Warn("idempotency check failed; creating without it")
			key = ""
		case !added:
			return c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
		}
	} else {
		key = ""
	}

	t, err := h.svc.CreateTask(ctx, in)
	if err != nil {
		if key != "" {
			if rerr := h.deduper.Remove(context.WithoutCancel(ctx), user.ID, key); rerr != nil {
				h.log.Errorf("dedupe rollback failed, err: %v, key: %s, user: %s", rerr, key, user.ID)
			}
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *handlers) updateTask(c echo.Context) error {
	if _, err := h.requireUser(c); err != nil {
		return writeError(c, err)
	}
	var in domain.TaskInput
	if err := readJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	t, err := h.svc.UpdateTask(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *handlers) completeTask(c echo.Context) error {
	if _, err := h.requireUser(c); err != nil {
		return writeError(c, err)
	}
	t, err := h.svc.CompleteTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *handlers) deleteTask(c echo.Context) error {
	if _, err := h.requireUser(c); err != nil {
		return writeError(c, err)
	}
	if err := h.svc.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) syncTasks(c echo.Context) error {
	if _, err := h.requireUser(c); err != nil {
		return writeError(c, err)
	}
	tasks := make([]domain.Task, 0, 16)
	if err := readJSON(c, &tasks); err != nil {
		return writeError(c, err)
	}
	merged, err := h.svc.SyncTasks(c.Request().Context(), tasks)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, merged)
}
