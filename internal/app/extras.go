package app

import (
	"context"

	"github.com/pauljones0/agriconnect/internal/quiz"
)

// StartQuiz loads questions and starts the game. It blocks while the
// questions are generated.
func (a *App) StartQuiz(ctx context.Context, difficulty string) error {
	return a.fail("start_quiz", a.game.Start(ctx, quiz.ParseDifficulty(difficulty)))
}

func (a *App) AnswerQuiz(option string) error {
	_, err := a.game.Answer(option)
	return a.fail("answer_quiz", err)
}

func (a *App) NextQuestion() error {
	return a.fail("next_question", a.game.Next())
}

func (a *App) ResetQuiz() {
	a.game.Reset()
}

func (a *App) SetQuizVoice(on bool) {
	a.game.SetVoice(on)
}

// AskAssistant sends text to the farming assistant. Failures show up as
// the fallback reply in the transcript, never as a notice.
func (a *App) AskAssistant(ctx context.Context, text string) {
	a.chat.Send(ctx, text)
}
