package plan

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnparseableResponse is wrapped by every ParseError.
var ErrUnparseableResponse = errors.New("unparseable plan response")

const itemSeparator = "<br>"

// ParseError reports a response that does not follow the requested format.
// Line is 1-based within the response text; 0 means the whole response.
type ParseError struct {
	Kind   Kind
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s plan: line %d: %s", e.Kind, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s plan: %s", e.Kind, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrUnparseableResponse
}

// table is the schema-independent result of splitting a response. Each cell
// holds its items: list columns are split on <br>, other columns keep the whole
// cell as their single item.
type table struct {
	rows [][][]string
	tips []string
}

// ParseFitness parses a fitness plan response.
func ParseFitness(text string) (*Plan[FitnessRow], error) {
	t, err := parseTable(text, FitnessSchema)
	if err != nil {
		return nil, err
	}

	rows := make([]FitnessRow, 0, len(t.rows))
	for _, c := range t.rows {
		rows = append(rows, FitnessRow{
			Day:        c[0][0],
			Exercises:  c[1],
			SetsReps:   c[2],
			RestPeriod: c[3][0],
			Notes:      c[4][0],
		})
	}
	return &Plan[FitnessRow]{Rows: rows, Tips: t.tips}, nil
}

// ParseDiet parses a diet plan response.
func ParseDiet(text string) (*Plan[DietRow], error) {
	t, err := parseTable(text, DietSchema)
	if err != nil {
		return nil, err
	}

	rows := make([]DietRow, 0, len(t.rows))
	for _, c := range t.rows {
		rows = append(rows, DietRow{
			Day:       c[0][0],
			Breakfast: c[1],
			Lunch:     c[2],
			Dinner:    c[3],
			Snacks:    c[4],
		})
	}
	return &Plan[DietRow]{Rows: rows, Tips: t.tips}, nil
}

// SplitItems splits a list cell on <br> and trims every item.
func SplitItems(cell string) []string {
	items := strings.Split(cell, itemSeparator)
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return items
}

// JoinItems is the inverse of SplitItems for already trimmed items.
func JoinItems(items []string) string {
	return strings.Join(items, itemSeparator)
}

func parseTable(text string, schema Schema) (*table, error) {
	tableSection, tipsSection, found := strings.Cut(text, schema.TipsMarker)
	if !found {
		return nil, &ParseError{Kind: schema.Kind, Reason: fmt.Sprintf("missing section marker %q", schema.TipsMarker)}
	}
	// A repeated marker ends the tips section.
	tipsSection, _, _ = strings.Cut(tipsSection, schema.TipsMarker)

	// The first two pipe lines are the header and the --- separator.
	var rows [][][]string
	pipeLines := 0
	for i, line := range strings.Split(tableSection, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}
		pipeLines++
		if pipeLines <= 2 {
			continue
		}

		row := splitRow(line)
		if len(row) != len(schema.Columns) {
			return nil, &ParseError{
				Kind:   schema.Kind,
				Line:   i + 1,
				Reason: fmt.Sprintf("expected %d cells, got %d", len(schema.Columns), len(row)),
			}
		}
		rows = append(rows, schema.cellItems(row))
	}

	return &table{rows: rows, tips: parseTips(tipsSection)}, nil
}

// cellItems splits the list columns of a row into their items.
func (s Schema) cellItems(row []string) [][]string {
	items := make([][]string, len(row))
	for i, cell := range row {
		if s.ListColumns[i] {
			items[i] = SplitItems(cell)
		} else {
			items[i] = []string{cell}
		}
	}
	return items
}

// splitRow splits a table line on pipes. The fragments before a leading pipe
// and after a trailing pipe are dropped only when they are empty.
func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func parseTips(section string) []string {
	tips := []string{}
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "*") {
			continue
		}
		tips = append(tips, strings.TrimSpace(strings.TrimPrefix(line, "*")))
	}
	return tips
}
