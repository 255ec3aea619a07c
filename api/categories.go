package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ManiEids/vef2hop2/domain"
)

func (h *handlers) listCategories(c echo.Context) error {
	cats, err := h.svc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *handlers) getCategory(c echo.Context) error {
	cat, err := h.svc.GetCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *handlers) createCategory(c echo.Context) error {
	actor, err := h.optionalUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in domain.CategoryInput
	if err := readJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	cat, err := h.svc.CreateCategory(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *handlers) updateCategory(c echo.Context) error {
	actor, err := h.optionalUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in domain.CategoryInput
	if err := readJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	cat, err := h.svc.UpdateCategory(c.Request().Context(), actor, c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *handlers) deleteCategory(c echo.Context) error {
	actor, err := h.optionalUser(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.svc.DeleteCategory(c.Request().Context(), actor, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) listTags(c echo.Context) error {
	tags, err := h.svc.ListTags(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *handlers) createTag(c echo.Context) error {
	if _, err := h.requireUser(c); err != nil {
		return writeError(c, err)
	}
	var in domain.TagInput
	if err := readJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	tag, err := h.svc.CreateTag(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, tag)
}
