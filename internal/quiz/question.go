package quiz

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/pauljones0/agriconnect/internal/apperr"
	"github.com/pauljones0/agriconnect/internal/validator"
)

// OptionCount is the number of choices every question offers.
const OptionCount = 4

// Difficulty is the level questions are generated for.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts easy, medium or hard in any case. Anything else
// is medium.
func ParseDifficulty(s string) Difficulty {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d
	}
	return Medium
}

// Question is one multiple-choice question as the generator returns it.
type Question struct {
	Q           string   `json:"q" validate:"required,notblank"`
	Options     []string `json:"options" validate:"len=4,dive,required"`
	Answer      string   `json:"answer" validate:"required"`
	Explanation string   `json:"explanation"`
}

var validate = validator.New()

// StripCodeFence removes markdown code fences a model may wrap JSON in.
func StripCodeFence(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseQuestions decodes a JSON array of questions. Each question needs
// four options and an answer that is exactly one of them. Every failure
// wraps apperr.ErrMalformed.
func ParseQuestions(text string) ([]Question, error) {
	var qs []Question
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &qs); err != nil {
		return nil, fmt.Errorf("%w: quiz questions: %v", apperr.ErrMalformed, err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("%w: no quiz questions", apperr.ErrMalformed)
	}
	for i, q := range qs {
		if err := validate.ValidateStruct(q); err != nil {
			return nil, fmt.Errorf("%w: question %d: %s", apperr.ErrMalformed, i+1, validator.Describe(err))
		}
		if !slices.Contains(q.Options, q.Answer) {
			return nil, fmt.Errorf("%w: question %d: answer %q is not an option", apperr.ErrMalformed, i+1, q.Answer)
		}
	}
	return qs, nil
}
