package api

import (
	"github.com/labstack/echo/v4"

	"github.com/nivi1412/ticketing-platform/internal/config"
)

// ConfigureServer はHTTPサーバーの読み書きタイムアウトを設定値に合わせる
// e.Startはe.Serverをそのまま使うため、起動前に呼ぶこと
func ConfigureServer(e *echo.Echo, cfg *config.ServerConfig) {
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
}
