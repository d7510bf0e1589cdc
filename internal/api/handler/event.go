package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nivi1412/ticketing-platform/internal/application"
	"github.com/nivi1412/ticketing-platform/internal/domain/event"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

type EventHandler struct {
	service EventServiceInterface
}

func NewEventHandler(s EventServiceInterface) *EventHandler {
	return &EventHandler{service: s}
}

type CreateEventRequest struct {
	TotalTickets int `json:"total_tickets" validate:"omitempty,min=1,max=100000" example:"100"`
}

type EventResponse struct {
	EventID        string    `json:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	TotalTickets   int       `json:"total_tickets" example:"100"`
	AvailableSeats *int      `json:"available_seats,omitempty" example:"42"`
	CreatedAt      time.Time `json:"created_at"`
}

func toEventResponse(e *event.Event, available *int) EventResponse {
	return EventResponse{
		EventID:        e.ID,
		TotalTickets:   e.TotalTickets,
		AvailableSeats: available,
		CreatedAt:      e.CreatedAt,
	}
}

// Create godoc
// @Summary イベントを作成
// @Description イベントと全座席を初期化します（座席数省略時は100席）
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	e, err := h.service.CreateEvent(c.Request().Context(), application.CreateEventInput{
		TotalTickets: req.TotalTickets,
	})
	if err != nil {
		if errors.Is(err, transaction.ErrStoreUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	available := e.TotalTickets
	return c.JSON(http.StatusCreated, toEventResponse(e, &available))
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントと現在の空席数を取得します
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	// UUIDとして不正なIDはストアに問い合わせるまでもなく存在しない
	if err := uuid.Validate(id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, event.ErrEventNotFound.Error())
	}
	e, err := h.service.GetEvent(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	available, err := h.service.GetAvailability(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponse(e, &available))
}

// List godoc
// @Summary イベント一覧を取得
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	events, err := h.service.ListEvents(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]EventResponse, len(events))
	for i, e := range events {
		resp[i] = toEventResponse(e, nil)
	}
	return c.JSON(http.StatusOK, resp)
}
