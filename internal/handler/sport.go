package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sport-facility-reservation/internal/booking"
)

// SportHandler exposes sport management. Listing is public; create,
// update, delete and statistics are admin-only.
type SportHandler struct {
	Svc *booking.Service
}

func NewSportHandler(svc *booking.Service) *SportHandler {
	return &SportHandler{Svc: svc}
}

type sportReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PlayerCount *int   `json:"player_count"`
}

// List returns every sport. Public.
func (h *SportHandler) List(c echo.Context) error {
	sports, err := h.Svc.GetAllSports(c.Request().Context())
	if err != nil {
		return engineErr(c, err)
	}
	out := make([]sportResp, 0, len(sports))
	for _, s := range sports {
		out = append(out, toSportResp(s))
	}
	return c.JSON(http.StatusOK, out)
}

// Create registers a new sport. Admin only.
func (h *SportHandler) Create(c echo.Context) error {
	var req sportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sport, err := h.Svc.CreateSport(c.Request().Context(), callerFrom(c), booking.SportInput{
		Name:        req.Name,
		Description: req.Description,
		PlayerCount: req.PlayerCount,
	})
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusCreated, toSportResp(sport))
}

// Update changes a sport. The capacity is skipped while the sport has
// active reservations; the response then carries a message explaining
// why.
func (h *SportHandler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req sportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sport, advisory, err := h.Svc.UpdateSport(c.Request().Context(), callerFrom(c), id, booking.SportInput{
		Name:        req.Name,
		Description: req.Description,
		PlayerCount: req.PlayerCount,
	})
	if err != nil {
		return engineErr(c, err)
	}
	resp := echo.Map{"sport": toSportResp(sport)}
	if advisory != "" {
		resp["message"] = advisory
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete removes a sport and all its reservations. Admin only.
func (h *SportHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Svc.DeleteSport(c.Request().Context(), callerFrom(c), id); err != nil {
		return engineErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Statistics returns reservation counts per sport. Admin only.
func (h *SportHandler) Statistics(c echo.Context) error {
	stats, err := h.Svc.SportStatistics(c.Request().Context(), callerFrom(c))
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
