package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"FitPlanPro/internal/plan"
	"FitPlanPro/internal/utility"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Messages pushed on the live channel.
type liveMessage struct {
	Type        string   `json:"type"`
	Seq         uint64   `json:"seq,omitempty"`
	BMI         float64  `json:"bmi,omitempty"`
	BMICategory string   `json:"bmi_category,omitempty"`
	Kind        string   `json:"kind,omitempty"`
	Columns     []string `json:"columns,omitempty"`
	Plan        any      `json:"plan,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// liveHandler upgrades to a websocket. Each profile the tab sends starts a new
// pair of plan requests; every plan is pushed as soon as it is ready. Submissions
// are sequenced per connection, so tabs sharing a session never interfere. A new
// submission cancels the previous one of the same connection and results of
// older submissions are never delivered.
func (s *Server) liveHandler(c echo.Context) error {
	logger := utility.GetLogger(c)

	clientID, err := utility.ClientID(c, s.sessions)
	if err != nil {
		logger.Error().Err(err).Msg("liveHandler: failed to resolve client")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	ip := utility.GetRealIP(c)

	client, err := utility.Upgrade(c.Response(), c.Request(), clientID)
	if err != nil {
		logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return nil
	}
	defer client.Close()
	defer s.sequencer.Forget(client.ID)

	connLogger := logger.With().Str("conn_id", client.ID).Logger()
	connLogger.Info().Msg("WebSocket Client Connected")

	connCtx, cancelConn := context.WithCancel(context.Background())
	defer cancelConn()
	cancelPrev := func() {}

	for {
		var p plan.Profile
		if err := client.ReadJSON(&p); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				// Bad JSON from the page: report it and keep listening.
				_ = client.Send(liveMessage{Type: "error", Error: "Invalid request format"})
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				connLogger.Warn().Err(err).Msg("WebSocket read failed")
			}
			break
		}

		if err := p.Validate(); err != nil {
			_ = client.Send(liveMessage{Type: "error", Error: err.Error()})
			continue
		}
		if err := s.limiter.Check(ip); err != nil {
			_ = client.Send(liveMessage{Type: "error", Error: err.Error()})
			continue
		}

		// The token is issued under the write lock, so a plan of the previous
		// submission can no longer be written once "accepted" is on the wire.
		var seq uint64
		bmi := plan.CalculateBMI(p.HeightCm, p.WeightKg)
		_, err := client.SendFunc(func() (any, bool) {
			seq = s.sequencer.Issue(client.ID)
			return liveMessage{Type: "accepted", Seq: seq, BMI: bmi, BMICategory: plan.BMICategory(bmi)}, true
		})

		cancelPrev()
		if err != nil {
			break
		}
		var subCtx context.Context
		subCtx, cancelPrev = context.WithCancel(connCtx)

		l := connLogger.With().Uint64("seq", seq).Logger()
		s.runLive(subCtx, &l, client, seq, p)
	}

	cancelPrev()
	connLogger.Info().Msg("WebSocket Client Disconnected")
	return nil
}

// runLive starts both plan requests in the background and pushes each result
// if seq is still the connection's latest submission.
func (s *Server) runLive(ctx context.Context, logger *zerolog.Logger, client *utility.SocketClient, seq uint64, p plan.Profile) {
	push := func(msg liveMessage) {
		sent, err := client.SendFunc(func() (any, bool) {
			return msg, s.sequencer.IsCurrent(client.ID, seq)
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to send WS message")
			return
		}
		if !sent {
			logger.Info().Str("kind", msg.Kind).Msg("Dropping plan of a superseded submission")
		}
	}

	go func() {
		res := toPlanResponse(plan.FitnessSchema, s.requestor.RequestFitness(ctx, logger, p))
		msg := liveMessage{Type: "plan", Seq: seq, Kind: string(plan.KindFitness), Columns: res.Columns, Error: res.Error}
		if res.Plan != nil {
			msg.Plan = res.Plan
		}
		push(msg)
	}()
	go func() {
		res := toPlanResponse(plan.DietSchema, s.requestor.RequestDiet(ctx, logger, p))
		msg := liveMessage{Type: "plan", Seq: seq, Kind: string(plan.KindDiet), Columns: res.Columns, Error: res.Error}
		if res.Plan != nil {
			msg.Plan = res.Plan
		}
		push(msg)
	}()
}
