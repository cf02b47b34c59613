package quiz

import (
	"log/slog"
	"strings"
)

// Narrator reads text aloud. Speak must not block; a narrator that cannot
// speak simply drops the text.
type Narrator interface {
	Speak(text string)
}

// NarratorFunc adapts a function to Narrator.
type NarratorFunc func(text string)

func (f NarratorFunc) Speak(text string) { f(text) }

// LogNarrator writes narration to the debug log. It stands in where no
// speech output is attached.
type LogNarrator struct{}

func (LogNarrator) Speak(text string) {
	slog.Debug("Quiz narration", "text", text)
}

// QuestionPrompt is what is read when a question appears.
func QuestionPrompt(q Question) string {
	return q.Q + ". Options are: " + strings.Join(q.Options, ", ")
}

// AnswerFeedback is what is read after an answer is chosen.
func AnswerFeedback(q Question, correct bool) string {
	if correct {
		return "Correct! " + q.Explanation
	}
	return "Incorrect. " + q.Explanation
}
