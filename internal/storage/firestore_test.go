package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pauljones0/agriconnect/internal/models"
)

func TestTranslate(t *testing.T) {
	plain := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "not found", err: status.Error(codes.NotFound, "missing"), want: models.ErrNotFound},
		{name: "already exists", err: status.Error(codes.AlreadyExists, "dup"), want: models.ErrAlreadyExists},
		{name: "permission denied passes through", err: status.Error(codes.PermissionDenied, "no"), want: nil},
		{name: "plain error passes through", err: plain, want: plain},
		{name: "sentinel from transaction body", err: models.ErrInvalidTransition, want: models.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("translate(nil) = %v, want nil", got)
				}
				return
			}
			if tt.want == nil {
				if status.Code(got) != status.Code(tt.err) {
					t.Errorf("translate changed the status code: %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("translate(%v) = %v, want wrapping %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStreamEnded(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"done", iterator.Done, true},
		{"context canceled", context.Canceled, true},
		{"wrapped cancel", fmt.Errorf("listen: %w", context.Canceled), true},
		{"grpc canceled", status.Error(codes.Canceled, "stop"), true},
		{"unavailable", status.Error(codes.Unavailable, "down"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := streamEnded(tt.err); got != tt.want {
				t.Errorf("streamEnded(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
