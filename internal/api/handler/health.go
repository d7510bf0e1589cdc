package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger は依存先ストアの死活確認を行う
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックハンドラー
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler はHealthHandlerを作成する
// db が nil の場合、Ready はプロセスの生存のみを報告する
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// Check はプロセスの生存を確認する
// @Summary ヘルスチェック
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "ticketing-platform",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Ready はデータベースへの疎通を含めた準備完了状態を確認する
// @Summary レディネスチェック
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c echo.Context) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status:    "unavailable",
				Service:   "ticketing-platform",
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "ticketing-platform",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
