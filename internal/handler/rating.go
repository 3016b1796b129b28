package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sport-facility-reservation/internal/booking"
	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// RatingHandler exposes reservation ratings.
type RatingHandler struct {
	Svc *booking.Service
}

func NewRatingHandler(svc *booking.Service) *RatingHandler {
	return &RatingHandler{Svc: svc}
}

type ratingReq struct {
	Hygiene    int    `json:"hygiene"`
	Equipment  int    `json:"equipment"`
	Atmosphere int    `json:"atmosphere"`
	Comment    string `json:"comment"`
}

type ratingResp struct {
	ID            uint64 `json:"id"`
	ReservationID uint64 `json:"reservation_id"`
	Username      string `json:"username"`
	Hygiene       int    `json:"hygiene"`
	Equipment     int    `json:"equipment"`
	Atmosphere    int    `json:"atmosphere"`
	Comment       string `json:"comment"`
}

func toRatingResp(r model.ReservationRating) ratingResp {
	return ratingResp{
		ID:            r.ID,
		ReservationID: r.ReservationID,
		Username:      r.Username,
		Hygiene:       r.Hygiene,
		Equipment:     r.Equipment,
		Atmosphere:    r.Atmosphere,
		Comment:       r.Comment,
	}
}

// Create records the caller's rating of a past reservation.
func (h *RatingHandler) Create(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req ratingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	rating, err := h.Svc.RateReservation(c.Request().Context(), callerFrom(c), id, booking.RatingInput{
		Hygiene:    req.Hygiene,
		Equipment:  req.Equipment,
		Atmosphere: req.Atmosphere,
		Comment:    req.Comment,
	})
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusCreated, toRatingResp(rating))
}

// List returns all ratings of a reservation.
func (h *RatingHandler) List(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ratings, err := h.Svc.RatingsForReservation(c.Request().Context(), id)
	if err != nil {
		return engineErr(c, err)
	}
	out := make([]ratingResp, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, toRatingResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Mine reports whether the caller already rated the reservation.
func (h *RatingHandler) Mine(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	rated, err := h.Svc.HasRated(c.Request().Context(), callerFrom(c), id)
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rated": rated})
}

// Delete removes the caller's own rating.
func (h *RatingHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Svc.DeleteRating(c.Request().Context(), callerFrom(c), id); err != nil {
		return engineErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
