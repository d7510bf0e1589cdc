package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nivi1412/ticketing-platform/internal/admission"
	"github.com/nivi1412/ticketing-platform/internal/application"
	"github.com/nivi1412/ticketing-platform/internal/domain/booking"
	"github.com/nivi1412/ticketing-platform/internal/domain/event"
	"github.com/nivi1412/ticketing-platform/internal/domain/seat"
	"github.com/nivi1412/ticketing-platform/internal/domain/transaction"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	EventID   string `json:"event_id" validate:"required,uuid4" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatCount int    `json:"seat_count" validate:"required,min=1" example:"2"`
}

type BookingResponse struct {
	BookingID string    `json:"booking_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EventID   string    `json:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID    string    `json:"user_id" example:"user-123"`
	SeatIDs   []int     `json:"seat_ids" example:"1,2"`
	CreatedAt time.Time `json:"created_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		BookingID: b.ID,
		EventID:   b.EventID,
		UserID:    b.UserID,
		SeatIDs:   b.SeatIDs,
		CreatedAt: b.CreatedAt,
	}
}

// Create godoc
// @Summary 座席を予約
// @Description 指定した席数（最大2席）を確保して予約を作成します
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string "席数上限超過"
// @Failure 404 {object} map[string]string "イベントが存在しない"
// @Failure 409 {object} map[string]string "空席不足"
// @Failure 429 {object} map[string]string "アクセス集中による受付制限"
// @Failure 503 {object} map[string]string "ストア利用不可"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.Reserve(c.Request().Context(), application.ReserveInput{
		EventID:   req.EventID,
		UserID:    userID,
		SeatCount: req.SeatCount,
	})
	if err != nil {
		return bookingErrorToHTTP(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約を取り消して座席を解放します
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string "予約が存在しない、または既にキャンセル済み"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	// UUIDとして不正なIDはストアに問い合わせるまでもなく存在しない
	if err := uuid.Validate(id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, booking.ErrBookingNotFound.Error())
	}
	b, err := h.service.Cancel(c.Request().Context(), id)
	if err != nil {
		return bookingErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	if err := uuid.Validate(id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, booking.ErrBookingNotFound.Error())
	}
	b, err := h.service.GetBooking(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetUserBookings godoc
// @Summary ユーザーの予約一覧を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) GetUserBookings(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.service.GetUserBookings(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// bookingErrorToHTTP はドメインエラーをHTTPステータスに対応付ける
// 座席ロックの競合はコーディネーター内部で解決されるため、ここに届くのは終端的な結果のみ
func bookingErrorToHTTP(err error) error {
	switch {
	case errors.Is(err, booking.ErrSeatLimitExceeded),
		errors.Is(err, booking.ErrSeatCountRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, booking.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, seat.ErrNotEnoughSeats):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, admission.ErrEventBusy):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	case errors.Is(err, transaction.ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
