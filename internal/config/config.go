package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

type Config struct {
	ProjectID                 string
	StoreBackend              string
	FirebaseAPIKey            string
	Port                      string
	GeminiAPIKey              string
	GeminiModel               string
	AssistantAPIURL           string
	RequireAcceptedConnection bool
	InQueryBatchSize          int
	MaxImageBytes             int
	JobAlertRate              float64 // notifications per second during fan-out
	QuizQuestionTime          time.Duration
	QuizQuestionCount         int
}

func Load() (*Config, error) {
	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = BackendFirestore
	}
	if backend != BackendFirestore && backend != BackendMemory {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want %q or %q", backend, BackendFirestore, BackendMemory)
	}

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	firebaseAPIKey := os.Getenv("FIREBASE_API_KEY")
	if backend == BackendFirestore {
		if projectID == "" {
			return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT environment variable is required but not set")
		}
		if firebaseAPIKey == "" {
			return nil, fmt.Errorf("FIREBASE_API_KEY environment variable is required but not set")
		}
	} else {
		slog.Warn("Using in-memory store and local accounts, data will not persist")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, quiz generation will be unavailable")
	}
	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-2.5-flash"
	}

	assistantAPIURL := os.Getenv("ASSISTANT_API_URL")
	if assistantAPIURL == "" {
		slog.Warn("ASSISTANT_API_URL not set, the farming assistant will only return its fallback reply")
	}

	requireAccepted := true
	if v := os.Getenv("REQUIRE_ACCEPTED_CONNECTION_TO_MESSAGE"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUIRE_ACCEPTED_CONNECTION_TO_MESSAGE %q: %w", v, err)
		}
		requireAccepted = parsed
	}

	batchSize, err := positiveInt("IN_QUERY_BATCH_SIZE", 10)
	if err != nil {
		return nil, err
	}
	if batchSize > 10 {
		return nil, fmt.Errorf("invalid IN_QUERY_BATCH_SIZE %d: membership queries accept at most 10 values", batchSize)
	}

	maxImageBytes, err := positiveInt("MAX_IMAGE_BYTES", 800*1024)
	if err != nil {
		return nil, err
	}

	jobAlertRate := 20.0
	if v := os.Getenv("JOB_ALERT_RATE"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid JOB_ALERT_RATE %q: must be a positive number", v)
		}
		jobAlertRate = parsed
	}

	questionTimeStr := os.Getenv("QUIZ_QUESTION_TIME")
	if questionTimeStr == "" {
		questionTimeStr = "60s"
	}
	questionTime, err := time.ParseDuration(questionTimeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid QUIZ_QUESTION_TIME %q: %w", questionTimeStr, err)
	}

	questionCount, err := positiveInt("QUIZ_QUESTION_COUNT", 5)
	if err != nil {
		return nil, err
	}

	return &Config{
		ProjectID:                 projectID,
		StoreBackend:              backend,
		FirebaseAPIKey:            firebaseAPIKey,
		Port:                      port,
		GeminiAPIKey:              geminiAPIKey,
		GeminiModel:               geminiModel,
		AssistantAPIURL:           assistantAPIURL,
		RequireAcceptedConnection: requireAccepted,
		InQueryBatchSize:          batchSize,
		MaxImageBytes:             maxImageBytes,
		JobAlertRate:              jobAlertRate,
		QuizQuestionTime:          questionTime,
		QuizQuestionCount:         questionCount,
	}, nil
}

func positiveInt(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("invalid %s %d: must be positive", name, parsed)
	}
	return parsed, nil
}
