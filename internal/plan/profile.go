package plan

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidProfile is wrapped by every Profile validation failure.
var ErrInvalidProfile = errors.New("invalid profile")

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Goal string

const (
	GoalLose   Goal = "lose"
	GoalGain   Goal = "gain"
	GoalMuscle Goal = "muscle"
)

// Phrase is the wording used for the goal inside prompts.
func (g Goal) Phrase() string {
	switch g {
	case GoalLose:
		return "lose weight"
	case GoalGain:
		return "gain weight"
	default:
		return "gain muscle"
	}
}

// Label is the wording shown in the form's goal select.
func (g Goal) Label() string {
	switch g {
	case GoalLose:
		return "Lose Weight"
	case GoalGain:
		return "Gain Weight"
	default:
		return "Build Muscle"
	}
}

// Profile holds the form inputs for one submission.
type Profile struct {
	HeightCm float64 `json:"height" form:"height"`
	WeightKg float64 `json:"weight" form:"weight"`
	Age      int     `json:"age" form:"age"`
	Gender   Gender  `json:"gender" form:"gender"`
	Goal     Goal    `json:"goal" form:"goal"`
}

// Validate applies the same constraints as the form inputs: numeric fields are
// required and positive, gender and goal come from fixed option lists.
func (p Profile) Validate() error {
	if !positive(p.HeightCm) {
		return fmt.Errorf("%w: height must be a positive number of centimeters", ErrInvalidProfile)
	}
	if !positive(p.WeightKg) {
		return fmt.Errorf("%w: weight must be a positive number of kilograms", ErrInvalidProfile)
	}
	if p.Age <= 0 {
		return fmt.Errorf("%w: age must be a positive number of years", ErrInvalidProfile)
	}

	switch p.Gender {
	case GenderMale, GenderFemale:
	default:
		return fmt.Errorf("%w: gender must be 'male' or 'female'", ErrInvalidProfile)
	}

	switch p.Goal {
	case GoalLose, GoalGain, GoalMuscle:
	default:
		return fmt.Errorf("%w: goal must be 'lose', 'gain' or 'muscle'", ErrInvalidProfile)
	}

	return nil
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
