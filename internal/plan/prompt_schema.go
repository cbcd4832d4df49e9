package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// This file stores the prompts and the table schemas for the AI.
// The format templates are part of the contract with the parser: the header
// line, the separator line and the tips marker must stay in sync with the
// Schema values below.

// SystemPrompt is sent as the system instruction on every generation call.
const SystemPrompt = `You are an expert personal trainer and nutritionist.
Answer only with the requested markdown table and tips section, with no introduction and no closing remarks.
Put multiple items inside one table cell separated by <br>.`

// profileTemplate is shared by both plan kinds.
// Placeholders: gender, height, weight, age, bmi, goal phrase.
const profileTemplate = `    - Gender: %s
    - Height: %s cm
    - Weight: %s kg
    - Age: %d years
    - BMI: %s
    - Goal: %s`

// FitnessFormatTemplate is the literal output example for fitness plans.
const FitnessFormatTemplate = `| Day | Exercises | Sets x Reps | Rest Period | Notes |
    |-----|-----------|-------------|-------------|-------|
    | Monday | Exercise 1<br>Exercise 2 | 3x12<br>4x10 | 60s | Keep form strict |
    | Tuesday | Exercise 1<br>Exercise 2 | 3x12<br>4x10 | 60s | Form tips |
    | Wednesday | Rest | - | - | Active recovery |
    | Thursday | Exercise 1<br>Exercise 2 | 3x12<br>4x10 | 60s | Form tips |
    | Friday | Exercise 1<br>Exercise 2 | 3x12<br>4x10 | 60s | Form tips |
    | Saturday | Exercise 1<br>Exercise 2 | 3x12<br>4x10 | 60s | Form tips |
    | Sunday | Rest | - | - | Recovery |

    Additional Tips and Precautions:

    * Tip 1
    * Tip 2
    * Tip 3`

// DietFormatTemplate is the literal output example for diet plans.
const DietFormatTemplate = `| Day | Breakfast | Lunch | Dinner | Snacks |
    |-----|-----------|-------|---------|--------|
    | Monday | Oatmeal<br>Banana | Chicken Salad<br>Brown Rice | Grilled Fish<br>Vegetables | Nuts<br>Yogurt |
    | Tuesday | Eggs<br>Toast | Turkey Wrap<br>Fruit | Lean Beef<br>Sweet Potato | Protein Bar<br>Apple |
    | Wednesday | Smoothie<br>Toast | Tuna Salad<br>Quinoa | Chicken<br>Rice | Cottage Cheese<br>Berries |

    Additional Diet Tips:

    * Tip 1
    * Tip 2
    * Tip 3`

// Schema describes the table a plan kind asks the model for.
type Schema struct {
	Kind Kind
	// Columns are the header names in table order.
	Columns []string
	// ListColumns marks the columns whose cell packs several <br>-separated items.
	ListColumns []bool
	// Intro opens the prompt.
	Intro string
	// Format is the literal output example embedded in the prompt.
	Format string
	// TipsMarker separates the table section from the tips section.
	TipsMarker string
}

var FitnessSchema = Schema{
	Kind:        KindFitness,
	Columns:     []string{"Day", "Exercises", "Sets x Reps", "Rest Period", "Notes"},
	ListColumns: []bool{false, true, true, false, false},
	Intro:       "Create a detailed 7-day fitness plan for someone with the following characteristics:",
	Format:      FitnessFormatTemplate,
	TipsMarker:  "Additional Tips and Precautions:",
}

var DietSchema = Schema{
	Kind:        KindDiet,
	Columns:     []string{"Day", "Breakfast", "Lunch", "Dinner", "Snacks"},
	ListColumns: []bool{false, true, true, true, true},
	Intro:       "Create a 7-day diet plan for someone with the following characteristics:",
	Format:      DietFormatTemplate,
	TipsMarker:  "Additional Diet Tips:",
}

// SchemaFor returns the schema of a plan kind.
func SchemaFor(kind Kind) (Schema, error) {
	switch kind {
	case KindFitness:
		return FitnessSchema, nil
	case KindDiet:
		return DietSchema, nil
	}
	return Schema{}, fmt.Errorf("unknown plan kind %q", kind)
}

// BuildPrompt renders the prompt for one plan kind.
func BuildPrompt(kind Kind, p Profile, bmi float64) (string, error) {
	schema, err := SchemaFor(kind)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(schema.Intro)
	b.WriteString("\n")
	fmt.Fprintf(&b, profileTemplate,
		p.Gender,
		formatNumber(p.HeightCm),
		formatNumber(p.WeightKg),
		p.Age,
		strconv.FormatFloat(bmi, 'f', 2, 64),
		p.Goal.Phrase(),
	)
	b.WriteString("\n\n    Respond with EXACTLY this format (including the empty line after the table):\n\n    ")
	b.WriteString(schema.Format)

	return b.String(), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
