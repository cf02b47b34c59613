// Package quiz runs the timed agriculture trivia game.
package quiz

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/pauljones0/agriconnect/internal/apperr"
)

// State is the phase of a game.
type State string

const (
	StateStart     State = "start"
	StateLoading   State = "loading"
	StatePlaying   State = "playing"
	StateCompleted State = "completed"
)

// PointsPerAnswer is awarded for each correct answer.
const PointsPerAnswer = 10

// LoadFailedMessage is shown when questions could not be generated.
const LoadFailedMessage = "Failed to load questions. Please try again."

var (
	ErrBusy            = errors.New("questions are already loading")
	ErrNotPlaying      = errors.New("no question is active")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrNotAnswered     = errors.New("question not answered yet")
	ErrUnknownOption   = errors.New("not one of the options")
)

// Generator produces questions for a difficulty.
type Generator interface {
	Generate(ctx context.Context, d Difficulty, count int) ([]Question, error)
}

// Options tunes a game.
type Options struct {
	QuestionTime  time.Duration
	QuestionCount int
}

// Snapshot is the visible state of a game. The answer and explanation of
// the current question are withheld until it is answered.
type Snapshot struct {
	State      State      `json:"state"`
	Difficulty Difficulty `json:"difficulty"`
	Index      int        `json:"index"`
	Total      int        `json:"total"`
	Question   *Question  `json:"question,omitempty"`
	Selected   string     `json:"selected,omitempty"`
	Answered   bool       `json:"answered"`
	Score      int        `json:"score"`
	Correct    int        `json:"correct"`
	Wrong      int        `json:"wrong"`
	Deadline   time.Time  `json:"deadline,omitzero"`
	Voice      bool       `json:"voice"`
	Error      string     `json:"error,omitempty"`
}

// Game is one player's quiz. Every question runs on a timer; when it
// expires unanswered the game moves on.
type Game struct {
	gen      Generator
	narrator Narrator
	opts     Options
	onChange func(Snapshot)

	schedule func(d time.Duration, f func()) (stop func() bool)
	now      func() time.Time

	emitMu sync.Mutex
	mu     sync.Mutex

	state      State
	difficulty Difficulty
	questions  []Question
	index      int
	selected   string
	answered   bool
	score      int
	correct    int
	wrong      int
	deadline   time.Time
	voice      bool
	errMsg     string

	// round changes whenever a question starts or the game leaves play, so
	// a timer or load from an earlier round is ignored.
	round     uint64
	stopTimer func() bool
}

// NewGame returns a game in the start state with narration on.
func NewGame(gen Generator, narrator Narrator, opts Options, onChange func(Snapshot)) *Game {
	if opts.QuestionTime <= 0 {
		opts.QuestionTime = 60 * time.Second
	}
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = 5
	}
	if narrator == nil {
		narrator = LogNarrator{}
	}
	return &Game{
		gen:        gen,
		narrator:   narrator,
		opts:       opts,
		onChange:   onChange,
		schedule:   afterFunc,
		now:        time.Now,
		state:      StateStart,
		difficulty: Medium,
		voice:      true,
	}
}

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// update applies mutate and publishes the result. mutate returns text to
// narrate, if any.
func (g *Game) update(mutate func() string) {
	g.emitMu.Lock()
	defer g.emitMu.Unlock()

	g.mu.Lock()
	speech := mutate()
	snap := g.snapshotLocked()
	voice := g.voice
	g.mu.Unlock()

	if g.onChange != nil {
		g.onChange(snap)
	}
	if voice && speech != "" {
		g.narrator.Speak(speech)
	}
}

// Start loads a fresh set of questions and begins the first one. On
// failure the game returns to the start state with a visible error.
func (g *Game) Start(ctx context.Context, d Difficulty) error {
	var round uint64
	var busy bool
	g.update(func() string {
		if g.state == StateLoading {
			busy = true
			return ""
		}
		g.haltLocked()
		g.state = StateLoading
		g.difficulty = d
		g.errMsg = ""
		g.questions = nil
		round = g.round
		return ""
	})
	if busy {
		return ErrBusy
	}

	qs, err := g.gen.Generate(ctx, d, g.opts.QuestionCount)

	var stale bool
	g.update(func() string {
		if g.round != round || g.state != StateLoading {
			stale = true
			return ""
		}
		if err != nil {
			g.state = StateStart
			g.errMsg = LoadFailedMessage
			return ""
		}
		if len(qs) > g.opts.QuestionCount {
			qs = qs[:g.opts.QuestionCount]
		}
		g.questions = qs
		g.index, g.score, g.correct, g.wrong = 0, 0, 0, 0
		g.state = StatePlaying
		return g.beginQuestionLocked()
	})
	switch {
	case err != nil:
		slog.Warn("Failed to generate quiz questions", "difficulty", d, "error", err)
		return apperr.WithNotice(err, LoadFailedMessage)
	case stale:
		return context.Canceled
	}
	return nil
}

func (g *Game) beginQuestionLocked() string {
	g.selected = ""
	g.answered = false
	g.deadline = g.now().Add(g.opts.QuestionTime)
	g.round++
	round := g.round
	g.stopTimer = g.schedule(g.opts.QuestionTime, func() { g.expire(round) })
	return QuestionPrompt(g.questions[g.index])
}

// haltLocked cancels the running timer and invalidates the current round.
func (g *Game) haltLocked() {
	if g.stopTimer != nil {
		g.stopTimer()
		g.stopTimer = nil
	}
	g.round++
}

func (g *Game) expire(round uint64) {
	g.update(func() string {
		if g.round != round || g.state != StatePlaying || g.answered {
			return ""
		}
		g.stopTimer = nil
		return g.advanceLocked()
	})
}

func (g *Game) advanceLocked() string {
	g.haltLocked()
	if g.index < len(g.questions)-1 {
		g.index++
		return g.beginQuestionLocked()
	}
	g.state = StateCompleted
	g.deadline = time.Time{}
	return ""
}

// Answer records option for the current question and reports whether it
// was correct. Only the first answer to a question counts.
func (g *Game) Answer(option string) (bool, error) {
	var correct bool
	var err error
	g.update(func() string {
		switch {
		case g.state != StatePlaying:
			err = ErrNotPlaying
			return ""
		case g.answered:
			err = ErrAlreadyAnswered
			return ""
		}
		q := g.questions[g.index]
		if !slices.Contains(q.Options, option) {
			err = ErrUnknownOption
			return ""
		}
		g.haltLocked()
		g.answered = true
		g.selected = option
		g.deadline = time.Time{}
		correct = option == q.Answer
		if correct {
			g.score += PointsPerAnswer
			g.correct++
		} else {
			g.wrong++
		}
		return AnswerFeedback(q, correct)
	})
	return correct, err
}

// Next moves past an answered question, finishing the game after the last.
func (g *Game) Next() error {
	var err error
	g.update(func() string {
		switch {
		case g.state != StatePlaying:
			err = ErrNotPlaying
			return ""
		case !g.answered:
			err = ErrNotAnswered
			return ""
		}
		return g.advanceLocked()
	})
	return err
}

// Reset returns to the start screen, abandoning any game in progress.
func (g *Game) Reset() {
	g.update(func() string {
		g.haltLocked()
		g.state = StateStart
		g.questions = nil
		g.index, g.score, g.correct, g.wrong = 0, 0, 0, 0
		g.selected, g.answered, g.errMsg = "", false, ""
		g.deadline = time.Time{}
		return ""
	})
}

// SetVoice turns narration on or off.
func (g *Game) SetVoice(on bool) {
	g.update(func() string {
		g.voice = on
		return ""
	})
}

// Snapshot returns the visible state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	s := Snapshot{
		State:      g.state,
		Difficulty: g.difficulty,
		Index:      g.index,
		Total:      len(g.questions),
		Selected:   g.selected,
		Answered:   g.answered,
		Score:      g.score,
		Correct:    g.correct,
		Wrong:      g.wrong,
		Deadline:   g.deadline,
		Voice:      g.voice,
		Error:      g.errMsg,
	}
	if g.state == StatePlaying && g.index < len(g.questions) {
		q := g.questions[g.index]
		q.Options = append([]string(nil), q.Options...)
		if !g.answered {
			q.Answer, q.Explanation = "", ""
		}
		s.Question = &q
	}
	return s
}

// Stop cancels the question timer. The game stays readable.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.haltLocked()
}
