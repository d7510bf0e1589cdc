package api

import (
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/nivi1412/ticketing-platform/internal/config"
)

func TestConfigureServer(t *testing.T) {
	e := echo.New()
	cfg := &config.ServerConfig{
		ReadTimeout:  7 * time.Second,
		WriteTimeout: 11 * time.Second,
	}

	ConfigureServer(e, cfg)

	assert.Equal(t, 7*time.Second, e.Server.ReadTimeout)
	assert.Equal(t, 11*time.Second, e.Server.WriteTimeout)
}
