// Package handler exposes HTTP handlers for both authenticated and public
// endpoints. This file defines the public school directory. These routes
// let unauthenticated visitors browse sports schools; responses carry only
// safe fields.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sportmaps/sportmaps-server/internal/model"
	"github.com/sportmaps/sportmaps-server/internal/repository"
)

// SchoolHandler aggregates the repository needed for unauthenticated
// browsing of the school directory.
type SchoolHandler struct {
	Schools *repository.SchoolRepo
}

func NewSchoolHandler(schools *repository.SchoolRepo) *SchoolHandler {
	return &SchoolHandler{Schools: schools}
}

// publicSchool is a school exposed via the public API.
type publicSchool struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	City        string   `json:"city"`
	Address     *string  `json:"address,omitempty"`
	Sports      []string `json:"sports"`
	Rating      float64  `json:"rating"`
	Verified    bool     `json:"verified"`
}

// List returns the school directory, optionally filtered by ?city= and
// ?sport=, ordered by rating. Response JSON contains an "items" array.
func (h *SchoolHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	schools, err := h.Schools.List(ctx, c.QueryParam("city"), c.QueryParam("sport"), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	out := make([]publicSchool, 0, len(schools))
	for _, s := range schools {
		out = append(out, toPublicSchool(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get returns one school by id.
func (h *SchoolHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Schools.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "school not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toPublicSchool(s))
}

func toPublicSchool(s model.School) publicSchool {
	sports := []string{}
	for _, sp := range strings.Split(s.Sports, ",") {
		if sp = strings.TrimSpace(sp); sp != "" {
			sports = append(sports, sp)
		}
	}
	return publicSchool{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		City:        s.City,
		Address:     s.Address,
		Sports:      sports,
		Rating:      s.Rating,
		Verified:    s.Verified,
	}
}
