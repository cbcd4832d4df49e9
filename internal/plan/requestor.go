package plan

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Generator is the external text-generation model.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Requestor turns a Profile into AI plans. It performs exactly one model call
// per plan kind and never retries.
type Requestor struct {
	gen Generator
}

func NewRequestor(gen Generator) *Requestor {
	return &Requestor{gen: gen}
}

// RequestText builds the prompt for kind and returns the raw model answer.
func (r *Requestor) RequestText(ctx context.Context, logger *zerolog.Logger, kind Kind, p Profile) (string, error) {
	bmi := CalculateBMI(p.HeightCm, p.WeightKg)
	prompt, err := BuildPrompt(kind, p, bmi)
	if err != nil {
		return "", err
	}

	logger.Info().Str("kind", string(kind)).Int("prompt_len", len(prompt)).Msg("Sending plan prompt to Gemini...")

	text, err := r.gen.GenerateText(ctx, prompt)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(kind)).Msg("Plan generation failed")
		return "", fmt.Errorf("generate %s plan: %w", kind, err)
	}

	logger.Info().Str("kind", string(kind)).Int("response_len", len(text)).Msg("Received plan response")
	return text, nil
}

// RequestFitness generates and parses the fitness plan.
func (r *Requestor) RequestFitness(ctx context.Context, logger *zerolog.Logger, p Profile) Result[FitnessRow] {
	text, err := r.RequestText(ctx, logger, KindFitness, p)
	if err != nil {
		return Result[FitnessRow]{Err: err}
	}

	parsed, err := ParseFitness(text)
	if err != nil {
		logger.Warn().Err(err).Msg("Fitness plan response did not match the requested format")
		return Result[FitnessRow]{Raw: text, Err: err}
	}
	return Result[FitnessRow]{Raw: text, Plan: parsed}
}

// RequestDiet generates and parses the diet plan.
func (r *Requestor) RequestDiet(ctx context.Context, logger *zerolog.Logger, p Profile) Result[DietRow] {
	text, err := r.RequestText(ctx, logger, KindDiet, p)
	if err != nil {
		return Result[DietRow]{Err: err}
	}

	parsed, err := ParseDiet(text)
	if err != nil {
		logger.Warn().Err(err).Msg("Diet plan response did not match the requested format")
		return Result[DietRow]{Raw: text, Err: err}
	}
	return Result[DietRow]{Raw: text, Plan: parsed}
}

// Generate runs both plan requests concurrently and waits for both. A failure
// of one side does not cancel or hide the other.
func (r *Requestor) Generate(ctx context.Context, logger *zerolog.Logger, p Profile) Outcome {
	bmi := CalculateBMI(p.HeightCm, p.WeightKg)
	out := Outcome{BMI: bmi, BMICategory: BMICategory(bmi)}

	// Tasks report their own failure in the Result; the group never fails.
	g, grpCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	g.Go(func() error {
		res := r.RequestFitness(grpCtx, logger, p)
		mu.Lock()
		out.Fitness = res
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		res := r.RequestDiet(grpCtx, logger, p)
		mu.Lock()
		out.Diet = res
		mu.Unlock()
		return nil
	})

	_ = g.Wait()

	logger.Info().
		Bool("fitness_ok", out.Fitness.OK()).
		Bool("diet_ok", out.Diet.OK()).
		Float64("bmi", bmi).
		Msg("Plan generation finished")

	return out
}
