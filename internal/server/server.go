/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the plan
requestor, the request sequencer and the rate limiter into the router.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"FitPlanPro/internal/config"
	"FitPlanPro/internal/geminiservice"
	"FitPlanPro/internal/plan"
	"FitPlanPro/internal/utility"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

const (
	// trackedClients bounds the per-client state kept for sequencing and rate limiting.
	trackedClients = 10000
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// gen is the AI text generator, kept for health reporting.
	gen geminiservice.Generator

	requestor *plan.Requestor
	sequencer *plan.Sequencer
	limiter   *utility.RateLimiter
	sessions  sessions.Store

	startedAt time.Time
}

// New builds a Server from the loaded configuration and an AI generator.
func New(cfg *config.Config, gen geminiservice.Generator) (*Server, error) {
	sequencer, err := plan.NewSequencer(trackedClients)
	if err != nil {
		return nil, err
	}

	secret := cfg.Server.SessionSecret
	if secret == "" {
		// Sessions only carry an anonymous client id; a per-process key is enough.
		secret, err = utility.GenerateSecureToken(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		log.Warn().Msg("SESSION_SECRET is not set; client ids reset on restart")
	}

	return &Server{
		port:      cfg.Server.Port,
		gen:       gen,
		requestor: plan.NewRequestor(gen),
		sequencer: sequencer,
		limiter:   utility.NewRateLimiter(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests, trackedClients),
		sessions:  utility.NewSessionStore(secret, cfg.Server.IsProduction()),
		startedAt: time.Now(),
	}, nil
}

// NewServer initializes a new Server instance and returns a configured *http.Server.
// The write timeout leaves room for a full Gemini call.
func NewServer(cfg *config.Config, gen geminiservice.Generator) (*http.Server, error) {
	newApp, err := New(cfg, gen)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", newApp.port),
		Handler:      newApp.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Gemini.Timeout + 15*time.Second,
	}

	return server, nil
}
