package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// healthHandler reports process uptime, host load and the AI backend in use.
func (s *Server) healthHandler(c echo.Context) error {
	ctx := c.Request().Context()

	stats := map[string]string{
		"status": "up",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	}

	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats["ram_usage"] = fmt.Sprintf("%.1f%%", v.UsedPercent)
	}
	// Interval 0 compares against the previous call instead of sleeping.
	if cpuPercent, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(cpuPercent) > 0 {
		stats["cpu_load"] = fmt.Sprintf("%.1f%%", cpuPercent[0])
	}

	for k, v := range s.gen.Describe() {
		stats["ai_"+k] = v
	}
	if stats["ai_transport"] == "none" {
		stats["message"] = "GEMINI_API_KEY is not set; plan generation is disabled."
	}

	return c.JSON(http.StatusOK, stats)
}
