package handler // declare the package name; contains HTTP handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sport-facility-reservation/internal/booking"
	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// Timestamps cross the wire as naive local facility time, with or
// without seconds.
const (
	timeLayout      = "2006-01-02T15:04:05"
	timeLayoutShort = "2006-01-02T15:04"
)

// callerFrom rebuilds the engine caller from the claims JWTAuth stored
// in the context.
func callerFrom(c echo.Context) booking.Caller {
	username, _ := c.Get("username").(string)
	role, _ := c.Get("role").(string)
	return booking.Caller{Username: username, Role: role}
}

// idParam parses the numeric :id path parameter.
func idParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// parseLocalTime accepts "2006-01-02T15:04:05" or the seconds-less
// short form.
func parseLocalTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(timeLayoutShort, s)
}

// engineErr translates an engine error kind into a stable HTTP
// response. Unknown kinds are internal failures and hide the message.
func engineErr(c echo.Context, err error) error {
	msg := err.Error()
	switch booking.KindOf(err) {
	case booking.KindNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
	case booking.KindForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": msg})
	case booking.KindValidation, booking.KindNotActive, booking.KindNotOpenForJoin, booking.KindNotAParticipant:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	case booking.KindCapacity, booking.KindResourceConflict, booking.KindUserConflict,
		booking.KindAlreadyParticipant, booking.KindAlreadyExists:
		return c.JSON(http.StatusConflict, echo.Map{"error": msg})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// ----- shared DTOs -----

type reservationResp struct {
	ID           uint64   `json:"id"`
	SportID      uint64   `json:"sport_id"`
	Creator      string   `json:"creator"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Status       string   `json:"status"`
	OpenForJoin  bool     `json:"open_for_join"`
	Participants []string `json:"participants"`
}

func toReservationResp(r model.Reservation) reservationResp {
	participants := r.Participants
	if participants == nil {
		participants = []string{}
	}
	return reservationResp{
		ID:           r.ID,
		SportID:      r.SportID,
		Creator:      r.Creator,
		StartTime:    r.StartTime.Format(timeLayout),
		EndTime:      r.EndTime.Format(timeLayout),
		Status:       r.Status,
		OpenForJoin:  r.OpenForJoin,
		Participants: participants,
	}
}

func toReservationResps(rs []model.Reservation) []reservationResp {
	out := make([]reservationResp, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReservationResp(r))
	}
	return out
}

type sportResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PlayerCount *int   `json:"player_count"`
}

func toSportResp(s model.Sport) sportResp {
	return sportResp{ID: s.ID, Name: s.Name, Description: s.Description, PlayerCount: s.PlayerCount}
}
