package server

import (
	"errors"
	"net/http"
	"strconv"

	"FitPlanPro/internal/geminiservice"
	"FitPlanPro/internal/plan"
	"FitPlanPro/internal/utility"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

const (
	msgGenerationFailed = "Error generating plans. Please try again."
	msgUnparseable      = "The AI response could not be read. Please try again."
	msgNotConfigured    = "AI plans are not available on this server."
	msgSuperseded       = "A newer submission replaced this one."
)

// PlanResponse is one plan as shown to the user: either the parsed plan or an
// error message, never both. Columns are the table headers of the plan kind.
type PlanResponse[R plan.FitnessRow | plan.DietRow] struct {
	Columns []string      `json:"columns"`
	Plan    *plan.Plan[R] `json:"plan,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// PlansResponse is the answer to one submission.
type PlansResponse struct {
	Seq         uint64                        `json:"seq"`
	BMI         float64                       `json:"bmi"`
	BMICategory string                        `json:"bmi_category"`
	Fitness     PlanResponse[plan.FitnessRow] `json:"fitness"`
	Diet        PlanResponse[plan.DietRow]    `json:"diet"`
}

// pageData feeds index.html.
type pageData struct {
	Profile   plan.Profile
	Goals     []plan.Goal
	FormError string
	Result    *PlansResponse
}

func newPageData(p plan.Profile) pageData {
	return pageData{
		Profile: p,
		Goals:   []plan.Goal{plan.GoalLose, plan.GoalGain, plan.GoalMuscle},
	}
}

// userMessage maps a plan failure onto the text shown in the plan's area.
// Upstream details stay in the logs.
func userMessage(err error) string {
	switch {
	case errors.Is(err, plan.ErrUnparseableResponse):
		return msgUnparseable
	case errors.Is(err, geminiservice.ErrNotConfigured):
		return msgNotConfigured
	default:
		return msgGenerationFailed
	}
}

func toPlanResponse[R plan.FitnessRow | plan.DietRow](schema plan.Schema, res plan.Result[R]) PlanResponse[R] {
	if res.Err != nil {
		return PlanResponse[R]{Columns: schema.Columns, Error: userMessage(res.Err)}
	}
	return PlanResponse[R]{Columns: schema.Columns, Plan: res.Plan}
}

func toPlansResponse(seq uint64, out plan.Outcome) *PlansResponse {
	return &PlansResponse{
		Seq:         seq,
		BMI:         out.BMI,
		BMICategory: out.BMICategory,
		Fitness:     toPlanResponse(plan.FitnessSchema, out.Fitness),
		Diet:        toPlanResponse(plan.DietSchema, out.Diet),
	}
}

/*=================================================================================
									HANDLERS
=================================================================================*/

// renderFormHandler serves the empty form and hands the browser its client id
// cookie, so the live channel opened by the page is sequenced under it.
func (s *Server) renderFormHandler(c echo.Context) error {
	if _, err := utility.ClientID(c, s.sessions); err != nil {
		utility.GetLogger(c).Warn().Err(err).Msg("renderFormHandler: failed to set client id")
	}
	return c.Render(http.StatusOK, "index.html", newPageData(plan.Profile{Gender: plan.GenderMale, Goal: plan.GoalLose}))
}

// submitFormHandler is the no-JavaScript path: it generates both plans and
// renders them below the form.
func (s *Server) submitFormHandler(c echo.Context) error {
	logger := utility.GetLogger(c)

	var p plan.Profile
	if err := c.Bind(&p); err != nil {
		data := newPageData(p)
		data.FormError = "Please enter numbers for height, weight and age."
		return c.Render(http.StatusBadRequest, "index.html", data)
	}
	if err := p.Validate(); err != nil {
		data := newPageData(p)
		data.FormError = err.Error()
		return c.Render(http.StatusBadRequest, "index.html", data)
	}

	resp, stale, err := s.generate(c, logger, p)
	if err != nil {
		logger.Error().Err(err).Msg("submitFormHandler: failed to resolve client")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	data := newPageData(p)
	if stale {
		data.FormError = msgSuperseded
		return c.Render(http.StatusConflict, "index.html", data)
	}
	data.Result = resp
	return c.Render(http.StatusOK, "index.html", data)
}

// generatePlansHandler generates both plans for a JSON profile.
func (s *Server) generatePlansHandler(c echo.Context) error {
	logger := utility.GetLogger(c)

	var p plan.Profile
	if err := c.Bind(&p); err != nil {
		logger.Warn().Err(err).Msg("Failed to bind request body")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := p.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	resp, stale, err := s.generate(c, logger, p)
	if err != nil {
		logger.Error().Err(err).Msg("generatePlansHandler: failed to resolve client")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if stale {
		return c.JSON(http.StatusConflict, map[string]any{"error": msgSuperseded, "seq": resp.Seq})
	}
	return c.JSON(http.StatusOK, resp)
}

// generatePlanHandler generates a single plan kind.
func (s *Server) generatePlanHandler(c echo.Context) error {
	ctx := c.Request().Context()
	logger := utility.GetLogger(c)

	kind, err := plan.ParseKind(c.Param("kind"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	var p plan.Profile
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
	}
	if err := p.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var body any
	switch kind {
	case plan.KindFitness:
		body = toPlanResponse(plan.FitnessSchema, s.requestor.RequestFitness(ctx, logger, p))
	case plan.KindDiet:
		body = toPlanResponse(plan.DietSchema, s.requestor.RequestDiet(ctx, logger, p))
	}
	return c.JSON(http.StatusOK, body)
}

// bmiHandler computes the BMI for ?height=<cm>&weight=<kg>.
func (s *Server) bmiHandler(c echo.Context) error {
	height, errH := strconv.ParseFloat(c.QueryParam("height"), 64)
	weight, errW := strconv.ParseFloat(c.QueryParam("weight"), 64)
	if errH != nil || errW != nil || height <= 0 || weight <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "height and weight must be positive numbers"})
	}

	bmi := plan.CalculateBMI(height, weight)
	return c.JSON(http.StatusOK, map[string]any{
		"bmi":          bmi,
		"bmi_category": plan.BMICategory(bmi),
	})
}

// generate issues a sequence token for the caller's browser, runs both plan
// requests and reports whether a newer submission was issued meanwhile.
func (s *Server) generate(c echo.Context, logger *zerolog.Logger, p plan.Profile) (*PlansResponse, bool, error) {
	clientID, err := utility.ClientID(c, s.sessions)
	if err != nil {
		return nil, false, err
	}

	seq := s.sequencer.Issue(clientID)
	l := logger.With().Uint64("seq", seq).Logger()

	out := s.requestor.Generate(c.Request().Context(), &l, p)
	resp := toPlansResponse(seq, out)

	if !s.sequencer.IsCurrent(clientID, seq) {
		l.Info().Msg("Discarding plans of a superseded submission")
		return resp, true, nil
	}
	return resp, false, nil
}
