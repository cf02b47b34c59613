package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/pauljones0/agriconnect/internal/quiz"
)

const quizSystemPrompt = "You are a helpful quiz generator. Always respond with valid JSON."

// QuizGenerator asks Gemini for multiple-choice agriculture questions.
type QuizGenerator struct {
	client *genai.Client
	model  string
}

// NewQuizGenerator returns nil without an API key so callers can degrade
// gracefully.
func NewQuizGenerator(ctx context.Context, apiKey, model string, cfg *genai.ClientConfig) (*QuizGenerator, error) {
	if apiKey == "" {
		return nil, nil
	}
	if cfg == nil {
		cfg = &genai.ClientConfig{}
	}
	cfg.APIKey = apiKey
	cfg.Backend = genai.BackendGeminiAPI

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &QuizGenerator{client: client, model: model}, nil
}

var questionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"q": {
				Type:        genai.TypeString,
				Description: "The question.",
			},
			"options": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				MinItems:    genai.Ptr[int64](quiz.OptionCount),
				MaxItems:    genai.Ptr[int64](quiz.OptionCount),
				Description: "Exactly four answer choices.",
			},
			"answer": {
				Type:        genai.TypeString,
				Description: "The correct choice, copied exactly from options.",
			},
			"explanation": {
				Type:        genai.TypeString,
				Description: "A short explanation of the answer.",
			},
		},
		Required: []string{"q", "options", "answer", "explanation"},
	},
}

func quizPrompt(d quiz.Difficulty, count int) string {
	return fmt.Sprintf(`Generate %d multiple-choice questions about Agriculture technology (AgriTech) for a %s level.
Focus on:
- Current affairs in agriculture (e.g., new government schemes, policies).
- Modern AgriTech innovations (drones, AI, IOT).
- Seasonal crops and farming practices.

Return ONLY a raw JSON array. Each object has "q", "options" (4 strings), "answer" (must match one of the options exactly) and "explanation".`, count, d)
}

// Generate implements quiz.Generator.
func (g *QuizGenerator) Generate(ctx context.Context, d quiz.Difficulty, count int) ([]quiz.Question, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("quiz generation is not configured")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(quizSystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    questionSchema,
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(quizPrompt(d, count)), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("no text in gemini response")
	}
	return quiz.ParseQuestions(text)
}
