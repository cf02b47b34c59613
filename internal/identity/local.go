package identity

import (
	"context"
	"net/mail"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Local is an in-process provider with bcrypt-hashed passwords, used with
// the in-memory store for development and tests.
type Local struct {
	mu       sync.Mutex
	accounts map[string]localAccount // keyed by normalized email
	cost     int
}

type localAccount struct {
	uid  string
	hash []byte
}

// NewLocal returns an empty provider. A cost of 0 uses bcrypt.DefaultCost.
func NewLocal(cost int) *Local {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Local{accounts: make(map[string]localAccount), cost: cost}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", &Error{Code: CodeInvalidEmail, Err: err}
	}
	return email, nil
}

func (l *Local) SignUp(ctx context.Context, email, password string) (Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Account{}, err
	}
	if len(password) < MinPasswordLength {
		return Account{}, &Error{Code: CodeWeakPassword}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return Account{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[email]; ok {
		return Account{}, &Error{Code: CodeEmailInUse}
	}
	acct := localAccount{uid: uuid.NewString(), hash: hash}
	l.accounts[email] = acct
	return Account{UID: acct.uid, Email: email}, nil
}

func (l *Local) SignIn(ctx context.Context, email, password string) (Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Account{}, err
	}
	l.mu.Lock()
	acct, ok := l.accounts[email]
	l.mu.Unlock()
	if !ok {
		return Account{}, &Error{Code: CodeUserNotFound}
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return Account{}, &Error{Code: CodeWrongPassword, Err: err}
	}
	return Account{UID: acct.uid, Email: email}, nil
}
