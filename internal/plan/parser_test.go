package plan

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fitnessScenario = "| Day | Exercises | Sets x Reps | Rest Period | Notes |\n" +
	"|---|---|---|---|---|\n" +
	"| Monday | Push-ups<br>Squats | 3x12<br>3x15 | 60s | Go slow\n" +
	"\n" +
	"Additional Tips and Precautions:\n" +
	"\n" +
	"* Stay hydrated\n" +
	"* Warm up first"

const fullFitness = `Here is your plan:

| Day | Exercises | Sets x Reps | Rest Period | Notes |
|-----|-----------|-------------|-------------|-------|
| Monday | Squats<br>Lunges | 3x12<br>4x10 | 60s | Keep form strict |
| Tuesday | Bench Press <br> Rows | 4x8<br>4x8 | 90s | Control the negative |
| Wednesday | Rest | - | - | Active recovery |

Additional Tips and Precautions:

* Sleep at least 7 hours
  *   Increase weights gradually
Remember to listen to your body.
* Stretch after training`

const fullDiet = `| Day | Breakfast | Lunch | Dinner | Snacks |
|-----|-----------|-------|---------|--------|
| Monday | Oatmeal<br>Banana | Chicken Salad<br>Brown Rice | Grilled Fish<br>Vegetables | Nuts<br>Yogurt |
| Tuesday | Eggs<br>Toast | Turkey Wrap<br>Fruit | Lean Beef<br>Sweet Potato | Protein Bar<br>Apple |

Additional Diet Tips:

* Drink water before meals
* Prefer whole grains`

func TestParseFitnessScenario(t *testing.T) {
	got, err := ParseFitness(fitnessScenario)
	require.NoError(t, err)

	require.Len(t, got.Rows, 1)
	assert.Equal(t, FitnessRow{
		Day:        "Monday",
		Exercises:  []string{"Push-ups", "Squats"},
		SetsReps:   []string{"3x12", "3x15"},
		RestPeriod: "60s",
		Notes:      "Go slow",
	}, got.Rows[0])
	assert.Equal(t, []string{"Stay hydrated", "Warm up first"}, got.Tips)
}

func TestParseFitnessFullResponse(t *testing.T) {
	got, err := ParseFitness(fullFitness)
	require.NoError(t, err)

	require.Len(t, got.Rows, 3)
	assert.Equal(t, "Monday", got.Rows[0].Day)
	assert.Equal(t, []string{"Bench Press", "Rows"}, got.Rows[1].Exercises)
	assert.Equal(t, "90s", got.Rows[1].RestPeriod)
	assert.Equal(t, []string{"Rest"}, got.Rows[2].Exercises)
	assert.Equal(t, []string{"-"}, got.Rows[2].SetsReps)
	assert.Equal(t, "Active recovery", got.Rows[2].Notes)

	assert.Equal(t, []string{
		"Sleep at least 7 hours",
		"Increase weights gradually",
		"Stretch after training",
	}, got.Tips)
}

func TestParseDiet(t *testing.T) {
	got, err := ParseDiet(fullDiet)
	require.NoError(t, err)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, DietRow{
		Day:       "Tuesday",
		Breakfast: []string{"Eggs", "Toast"},
		Lunch:     []string{"Turkey Wrap", "Fruit"},
		Dinner:    []string{"Lean Beef", "Sweet Potato"},
		Snacks:    []string{"Protein Bar", "Apple"},
	}, got.Rows[1])
	assert.Equal(t, []string{"Drink water before meals", "Prefer whole grains"}, got.Tips)
}

func TestParseHandlesCRLF(t *testing.T) {
	got, err := ParseDiet(strings.ReplaceAll(fullDiet, "\n", "\r\n"))
	require.NoError(t, err)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, []string{"Nuts", "Yogurt"}, got.Rows[0].Snacks)
	assert.Equal(t, []string{"Drink water before meals", "Prefer whole grains"}, got.Tips)
}

func TestParseRowCountMatchesDataLines(t *testing.T) {
	tests := []struct {
		name string
		days []string
	}{
		{name: "header only", days: nil},
		{name: "one day", days: []string{"Monday"}},
		{name: "full week", days: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			b.WriteString("| Day | Exercises | Sets x Reps | Rest Period | Notes |\n")
			b.WriteString("|---|---|---|---|---|\n")
			for _, d := range tt.days {
				b.WriteString("| " + d + " | Plank | 3x30s | 30s | Core |\n")
			}
			b.WriteString("\nAdditional Tips and Precautions:\n\n* Breathe\n")

			got, err := ParseFitness(b.String())
			require.NoError(t, err)
			require.Len(t, got.Rows, len(tt.days))
			for i, d := range tt.days {
				assert.Equal(t, d, got.Rows[i].Day)
			}
		})
	}
}

func TestParseEmptyTableYieldsNoRows(t *testing.T) {
	text := "| Day | Breakfast | Lunch | Dinner | Snacks |\n|---|---|---|---|---|\n\nAdditional Diet Tips:\n* Eat fruit"

	got, err := ParseDiet(text)
	require.NoError(t, err)
	assert.NotNil(t, got.Rows)
	assert.Empty(t, got.Rows)
	assert.Equal(t, []string{"Eat fruit"}, got.Tips)
}

func TestParseNoBulletsYieldsNoTips(t *testing.T) {
	text := "| Day | Exercises | Sets x Reps | Rest Period | Notes |\n|---|---|---|---|---|\n| Monday | Run | 1x20min | - | Easy |\n\nAdditional Tips and Precautions:\n\nJust keep going."

	got, err := ParseFitness(text)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.NotNil(t, got.Tips)
	assert.Empty(t, got.Tips)
}

func TestParseMissingMarkerFails(t *testing.T) {
	text := strings.Replace(fitnessScenario, "Additional Tips and Precautions:", "Tips:", 1)

	got, err := ParseFitness(text)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrUnparseableResponse))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindFitness, pe.Kind)
	assert.Equal(t, 0, pe.Line)

	// Each kind looks for its own marker.
	_, err = ParseDiet(fitnessScenario)
	assert.ErrorIs(t, err, ErrUnparseableResponse)
}

func TestParseWrongCellCountFails(t *testing.T) {
	text := "| Day | Exercises | Sets x Reps | Rest Period | Notes |\n" +
		"|---|---|---|---|---|\n" +
		"| Monday | Squats | 3x12 | 60s | Fine |\n" +
		"| Tuesday | Lunges | 3x12 |\n" +
		"\nAdditional Tips and Precautions:\n* Rest"

	_, err := ParseFitness(text)
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 4, pe.Line)
	assert.Contains(t, pe.Error(), "expected 5 cells, got 3")
}

func TestParseIsIdempotent(t *testing.T) {
	first, err := ParseFitness(fullFitness)
	require.NoError(t, err)
	second, err := ParseFitness(fullFitness)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	d1, err := ParseDiet(fullDiet)
	require.NoError(t, err)
	d2, err := ParseDiet(fullDiet)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestSplitItemsRoundTrip(t *testing.T) {
	got, err := ParseDiet(fullDiet)
	require.NoError(t, err)

	for _, row := range got.Rows {
		for _, cell := range [][]string{row.Breakfast, row.Lunch, row.Dinner, row.Snacks} {
			assert.Equal(t, cell, SplitItems(JoinItems(cell)))
		}
	}

	assert.Equal(t, []string{"a", "b", "c"}, SplitItems(" a <br>b<br>  c "))
	assert.Equal(t, []string{""}, SplitItems(""))
}

func TestParseRepeatedMarkerEndsTips(t *testing.T) {
	text := fitnessScenario + "\n\nAdditional Tips and Precautions:\n* Repeated tip"

	got, err := ParseFitness(text)
	require.NoError(t, err)
	assert.Equal(t, []string{"Stay hydrated", "Warm up first"}, got.Tips)
}

func TestListColumnsDriveItemSplitting(t *testing.T) {
	text := "| Day | Exercises | Sets x Reps | Rest Period | Notes |\n" +
		"|---|---|---|---|---|\n" +
		"| Monday | Squats<br>Lunges | 3x12 | 60s<br>90s | Easy<br>Slow |\n" +
		"\nAdditional Tips and Precautions:\n* Rest"

	got, err := ParseFitness(text)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, []string{"Squats", "Lunges"}, got.Rows[0].Exercises)
	assert.Equal(t, "60s<br>90s", got.Rows[0].RestPeriod)
	assert.Equal(t, "Easy<br>Slow", got.Rows[0].Notes)

	// A schema marking every column as a list splits every cell.
	allLists := FitnessSchema
	allLists.ListColumns = []bool{true, true, true, true, true}
	tbl, err := parseTable(text, allLists)
	require.NoError(t, err)
	assert.Equal(t, []string{"Easy", "Slow"}, tbl.rows[0][4])
	assert.Equal(t, []string{"Monday"}, tbl.rows[0][0])
}

func TestSchemasDescribeEveryColumn(t *testing.T) {
	for _, s := range []Schema{FitnessSchema, DietSchema} {
		assert.Len(t, s.ListColumns, len(s.Columns), s.Kind)
		assert.False(t, s.ListColumns[0], "the day column is never a list")
	}
}
