package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// Firebase authenticates against Firebase Authentication through the
// Identity Toolkit REST API.
type Firebase struct {
	relyingParty *identitytoolkit.RelyingpartyService
}

// NewFirebase creates a provider for the project that owns apiKey.
func NewFirebase(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Firebase, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit.NewService: %w", err)
	}
	return &Firebase{relyingParty: svc.Relyingparty}, nil
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (Account, error) {
	resp, err := f.relyingParty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return Account{}, mapFirebaseError(err)
	}
	slog.Info("Signed in", "uid", resp.LocalId)
	return Account{UID: resp.LocalId, Email: resp.Email}, nil
}

func (f *Firebase) SignUp(ctx context.Context, email, password string) (Account, error) {
	resp, err := f.relyingParty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return Account{}, mapFirebaseError(err)
	}
	slog.Info("Registered account", "uid", resp.LocalId)
	return Account{UID: resp.LocalId, Email: resp.Email}, nil
}

var firebaseCodes = map[string]Code{
	"EMAIL_EXISTS":                CodeEmailInUse,
	"INVALID_EMAIL":               CodeInvalidEmail,
	"MISSING_EMAIL":               CodeInvalidEmail,
	"WEAK_PASSWORD":               CodeWeakPassword,
	"MISSING_PASSWORD":            CodeWeakPassword,
	"EMAIL_NOT_FOUND":             CodeUserNotFound,
	"INVALID_PASSWORD":            CodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   CodeInvalidCredential,
	"USER_DISABLED":               CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": CodeTooManyRequests,
}

// mapFirebaseError converts the REST error message ("WEAK_PASSWORD : Password
// should be at least 6 characters") into an *Error. Unrecognised failures are
// returned wrapped but unmapped.
func mapFirebaseError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("identity provider: %w", err)
	}
	key, _, _ := strings.Cut(gerr.Message, " ")
	if code, ok := firebaseCodes[key]; ok {
		return &Error{Code: code, Err: err}
	}
	return fmt.Errorf("identity provider: %w", err)
}
