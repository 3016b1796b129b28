package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sport-facility-reservation/internal/booking"
)

// ReservationHandler exposes the reservation engine over HTTP. All
// routes require authentication; the engine enforces roles itself so
// the handler only translates requests and error kinds.
type ReservationHandler struct {
	Svc *booking.Service
}

func NewReservationHandler(svc *booking.Service) *ReservationHandler {
	return &ReservationHandler{Svc: svc}
}

type createReservationReq struct {
	SportID      uint64   `json:"sport_id"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Participants []string `json:"participants"`
	OpenForJoin  bool     `json:"open_for_join"`
}

type updateTimeReq struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type blockedReservationReq struct {
	SportID   uint64 `json:"sport_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Create books [start,end) for the caller, one row per slot.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, err := parseLocalTime(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
	}
	end, err := parseLocalTime(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
	}

	created, err := h.Svc.CreateReservation(c.Request().Context(), callerFrom(c), booking.CreateReservationInput{
		SportID:      req.SportID,
		StartTime:    start,
		EndTime:      end,
		Participants: req.Participants,
		OpenForJoin:  req.OpenForJoin,
	})
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationResps(created))
}

// List returns every reservation. Admin only (enforced by RequireRole).
func (h *ReservationHandler) List(c echo.Context) error {
	all, err := h.Svc.GetAllReservations(c.Request().Context())
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResps(all))
}

// Mine returns the caller's reservations, as creator or participant.
func (h *ReservationHandler) Mine(c echo.Context) error {
	mine, err := h.Svc.GetUserReservations(c.Request().Context(), callerFrom(c))
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResps(mine))
}

// BySport returns every reservation grouped under its sport name.
func (h *ReservationHandler) BySport(c echo.Context) error {
	grouped, err := h.Svc.GetAllReservationsBySport(c.Request().Context())
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusOK, groupedResp(grouped))
}

// MineBySport returns the caller's ACTIVE reservations grouped by sport.
func (h *ReservationHandler) MineBySport(c echo.Context) error {
	grouped, err := h.Svc.GetUserActiveReservationsBySport(c.Request().Context(), callerFrom(c))
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusOK, groupedResp(grouped))
}

// Cancel transitions an ACTIVE reservation to CANCELED.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Svc.CancelReservation(c.Request().Context(), callerFrom(c), id); err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation canceled"})
}

// Block transitions an ACTIVE reservation to BLOCKED. Admin only.
func (h *ReservationHandler) Block(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Svc.BlockReservation(c.Request().Context(), callerFrom(c), id); err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation blocked"})
}

// UpdateTime moves an ACTIVE reservation to a new validated range.
// Admin only.
func (h *ReservationHandler) UpdateTime(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateTimeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, err := parseLocalTime(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
	}
	end, err := parseLocalTime(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
	}
	updated, err := h.Svc.UpdateReservationTime(c.Request().Context(), callerFrom(c), id, start, end)
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(updated))
}

// CreateBlocked blocks a whole time range for maintenance or events,
// demoting anything already booked inside it. Admin only.
func (h *ReservationHandler) CreateBlocked(c echo.Context) error {
	var req blockedReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, err := parseLocalTime(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
	}
	end, err := parseLocalTime(req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
	}
	created, err := h.Svc.CreateBlockedReservation(c.Request().Context(), callerFrom(c), req.SportID, start, end)
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationResp(created))
}

// Join attaches the caller to an open reservation.
func (h *ReservationHandler) Join(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	res, err := h.Svc.JoinReservation(c.Request().Context(), callerFrom(c), id)
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// Leave detaches the caller from a reservation they joined.
func (h *ReservationHandler) Leave(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	res, err := h.Svc.LeaveReservation(c.Request().Context(), callerFrom(c), id)
	if err != nil {
		return engineErr(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

type sportGroupResp struct {
	Sport        string            `json:"sport"`
	Reservations []reservationResp `json:"reservations"`
}

func groupedResp(groups []booking.SportReservations) []sportGroupResp {
	out := make([]sportGroupResp, 0, len(groups))
	for _, g := range groups {
		out = append(out, sportGroupResp{Sport: g.Sport, Reservations: toReservationResps(g.Reservations)})
	}
	return out
}
