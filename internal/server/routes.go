package server

import (
	"errors"
	"html/template"
	"io"
	"net/http"

	"FitPlanPro/internal/utility"
	"FitPlanPro/web"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

// TemplateRenderer is a custom html/template renderer for Echo framework
type TemplateRenderer struct {
	templates *template.Template
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// NewTemplateRenderer parses the embedded page templates.
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{
		templates: template.Must(template.ParseFS(web.FS, "templates/*.html")),
	}
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"https://*", "http://*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:       300,
	}))

	e.Use(LoggerMiddleware)

	e.StaticFS("/static", echo.MustSubFS(web.FS, "public"))
	e.Renderer = NewTemplateRenderer()

	// Pages
	e.GET("/", s.renderFormHandler)
	e.POST("/plans", s.submitFormHandler, s.RateLimitMiddleware)

	// JSON API
	e.GET("/health", s.healthHandler)
	e.GET("/api/bmi", s.bmiHandler)
	e.POST("/api/plans", s.generatePlansHandler, s.RateLimitMiddleware)
	e.POST("/api/plans/:kind", s.generatePlanHandler, s.RateLimitMiddleware)

	// Live channel; rate limited per submission inside the handler
	e.GET("/ws/plans", s.liveHandler)

	return e
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()

		c.Set("logger", &logger)

		return next(c)
	}
}

// RateLimitMiddleware guards the routes that spend Gemini quota.
func (s *Server) RateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := utility.GetRealIP(c)
		if err := s.limiter.Check(ip); err != nil {
			if errors.Is(err, utility.ErrRateLimited) {
				utility.GetLogger(c).Warn().Str("ip", ip).Msg("Rate limit exceeded")
			}
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": err.Error()})
		}
		return next(c)
	}
}
