package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Set test environment variables (auto-cleaned up after test)
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("FIREBASE_API_KEY", "test-key")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("REQUIRE_ACCEPTED_CONNECTION_TO_MESSAGE", "")
	t.Setenv("IN_QUERY_BATCH_SIZE", "")
	t.Setenv("MAX_IMAGE_BYTES", "")
	t.Setenv("QUIZ_QUESTION_TIME", "")
	t.Setenv("QUIZ_QUESTION_COUNT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.ProjectID != "test-project" {
		t.Errorf("Expected test-project, got %s", cfg.ProjectID)
	}
	if cfg.StoreBackend != BackendFirestore {
		t.Errorf("Expected default backend firestore, got %s", cfg.StoreBackend)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected 9090, got %s", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("Expected default model, got %s", cfg.GeminiModel)
	}
	if !cfg.RequireAcceptedConnection {
		t.Errorf("Expected messaging to require an accepted connection by default")
	}
	if cfg.InQueryBatchSize != 10 {
		t.Errorf("Expected default batch size 10, got %d", cfg.InQueryBatchSize)
	}
	if cfg.MaxImageBytes != 800*1024 {
		t.Errorf("Expected default 800KB image limit, got %d", cfg.MaxImageBytes)
	}
	if cfg.QuizQuestionTime != 60*time.Second {
		t.Errorf("Expected default 60s question time, got %s", cfg.QuizQuestionTime)
	}
	if cfg.QuizQuestionCount != 5 {
		t.Errorf("Expected default 5 questions, got %d", cfg.QuizQuestionCount)
	}
}

func TestLoad_MissingProjectID(t *testing.T) {
	t.Setenv("STORE_BACKEND", "firestore")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("FIREBASE_API_KEY", "test-key")

	_, err := Load()
	if err == nil {
		t.Error("Load() should return an error when GOOGLE_CLOUD_PROJECT is not set")
	}
}

func TestLoad_MissingFirebaseKey(t *testing.T) {
	t.Setenv("STORE_BACKEND", "firestore")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("FIREBASE_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should return an error when FIREBASE_API_KEY is not set")
	}
}

func TestLoad_MemoryBackendNeedsNoProject(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("FIREBASE_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Errorf("Expected memory backend, got %s", cfg.StoreBackend)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"backend", "STORE_BACKEND", "postgres"},
		{"policy flag", "REQUIRE_ACCEPTED_CONNECTION_TO_MESSAGE", "sometimes"},
		{"batch size too large", "IN_QUERY_BATCH_SIZE", "30"},
		{"batch size zero", "IN_QUERY_BATCH_SIZE", "0"},
		{"image bytes", "MAX_IMAGE_BYTES", "lots"},
		{"alert rate", "JOB_ALERT_RATE", "-1"},
		{"question time", "QUIZ_QUESTION_TIME", "a minute"},
		{"question count", "QUIZ_QUESTION_COUNT", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORE_BACKEND", "memory")
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() should reject %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_PolicyFlagOff(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("REQUIRE_ACCEPTED_CONNECTION_TO_MESSAGE", "false")
	t.Setenv("QUIZ_QUESTION_TIME", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.RequireAcceptedConnection {
		t.Error("Expected policy flag to be off")
	}
	if cfg.QuizQuestionTime != 30*time.Second {
		t.Errorf("Expected 30s, got %s", cfg.QuizQuestionTime)
	}
}
