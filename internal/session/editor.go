package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pauljones0/agriconnect/internal/media"
	"github.com/pauljones0/agriconnect/internal/models"
)

// ErrNotEditing is returned by Save when no edit is in progress.
var ErrNotEditing = errors.New("no profile edit in progress")

// Editor is the profile edit form. Text fields are buffered until Save;
// images are written immediately and mirrored into the buffer so a later
// Save cannot put back a stale image.
type Editor struct {
	session  *Manager
	maxImage int

	mu     sync.Mutex
	buffer *models.User
}

func NewEditor(session *Manager, maxImageBytes int) *Editor {
	return &Editor{session: session, maxImage: maxImageBytes}
}

// Begin copies the current profile into the edit buffer.
func (e *Editor) Begin() (models.User, error) {
	u := e.session.Current()
	if u == nil {
		return models.User{}, fmt.Errorf("begin edit: %w", models.ErrNotPermitted)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer = u
	return *u, nil
}

// Set applies patch to the buffer without writing anything.
func (e *Editor) Set(patch models.ProfilePatch) (models.User, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return models.User{}, ErrNotEditing
	}
	u := patch.Apply(*e.buffer)
	e.buffer = &u
	return u, nil
}

// Editing reports whether an edit is in progress.
func (e *Editor) Editing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer != nil
}

// UploadImage validates data and writes it to field on the profile. The
// size ceiling is enforced before any write.
func (e *Editor) UploadImage(ctx context.Context, field models.ImageField, data []byte) error {
	uid := e.session.UID()
	if uid == "" {
		return fmt.Errorf("upload image: %w", models.ErrNotPermitted)
	}
	url, err := media.EncodeImage(data, e.maxImage)
	if err != nil {
		return err
	}
	patch := models.ImagePatch(field, url)
	if err := e.session.store.UpdateUser(ctx, uid, patch); err != nil {
		return fmt.Errorf("upload %s: %w", field, err)
	}

	e.mu.Lock()
	if e.buffer != nil {
		u := patch.Apply(*e.buffer)
		e.buffer = &u
	}
	e.mu.Unlock()
	return nil
}

// Save writes the buffered text fields as one partial update and ends the
// edit. Image fields are left out; UploadImage already wrote them.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	buf := e.buffer
	e.mu.Unlock()
	if buf == nil {
		return ErrNotEditing
	}
	patch := textPatch(*buf)
	if err := e.session.validate.ValidateStruct(patch); err != nil {
		return err
	}
	if err := e.session.store.UpdateUser(ctx, buf.ID, patch); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	e.mu.Lock()
	e.buffer = nil
	e.mu.Unlock()
	return nil
}

// Cancel drops the buffer.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffer = nil
}

func textPatch(u models.User) models.ProfilePatch {
	return models.ProfilePatch{
		Name:           &u.Name,
		FarmName:       &u.FarmName,
		Organization:   &u.Organization,
		Location:       &u.Location,
		CropsGrown:     &u.CropsGrown,
		LandArea:       &u.LandArea,
		Equipment:      &u.Equipment,
		Experience:     &u.Experience,
		Certifications: &u.Certifications,
		Headline:       &u.Headline,
		Bio:            &u.Bio,
	}
}
