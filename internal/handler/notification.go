package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sport-facility-reservation/internal/repository"
)

// NotificationHandler reads the notification rows written by the
// queue consumer.
type NotificationHandler struct {
	Store *repository.NotificationRepo
}

func NewNotificationHandler(store *repository.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Store: store}
}

type notificationResp struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	username, _ := c.Get("username").(string)
	notifications, err := h.Store.ListByUser(c.Request().Context(), username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list notifications failed"})
	}
	out := make([]notificationResp, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResp{ID: n.ID, Message: n.Message, Seen: n.Seen, CreatedAt: n.CreatedAt})
	}
	return c.JSON(http.StatusOK, out)
}

// MarkSeen flags all of the caller's notifications as seen.
func (h *NotificationHandler) MarkSeen(c echo.Context) error {
	username, _ := c.Get("username").(string)
	if err := h.Store.MarkSeen(c.Request().Context(), username); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark seen failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
