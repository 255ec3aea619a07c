package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ManiEids/vef2hop2/domain"
)

func (h *handlers) login(c echo.Context) error {
	var creds domain.Credentials
	if err := readJSON(c, &creds); err != nil {
		return writeError(c, err)
	}
	session, err := h.svc.Login(c.Request().Context(), creds)
	if err != nil {
		return writeError(c, err)
	}
	h.log.WithField("user", session.User.ID).Info("user logged in")
	return c.JSON(http.StatusOK, session)
}

func (h *handlers) register(c echo.Context) error {
	var reg domain.Registration
	if err := readJSON(c, &reg); err != nil {
		return writeError(c, err)
	}
	u, err := h.svc.Register(c.Request().Context(), reg)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *handlers) me(c echo.Context) error {
	u, err := h.requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
