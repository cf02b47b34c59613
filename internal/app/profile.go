package app

import (
	"context"

	"github.com/pauljones0/agriconnect/internal/models"
)

// BeginEdit opens the profile form.
func (a *App) BeginEdit() error {
	u, err := a.editor.Begin()
	if err != nil {
		return a.fail("begin_edit", err)
	}
	a.emit(EventProfileEdit, u)
	return nil
}

// EditProfile changes buffered form fields.
func (a *App) EditProfile(patch models.ProfilePatch) error {
	u, err := a.editor.Set(patch)
	if err != nil {
		return a.fail("edit_profile", err)
	}
	a.emit(EventProfileEdit, u)
	return nil
}

// UploadImage writes a profile or cover photo straight to the profile.
func (a *App) UploadImage(ctx context.Context, field models.ImageField, data []byte) error {
	return a.fail("upload_image", a.editor.UploadImage(ctx, field, data))
}

// SaveProfile writes the form and closes it.
func (a *App) SaveProfile(ctx context.Context) error {
	if err := a.editor.Save(ctx); err != nil {
		return a.fail("save_profile", err)
	}
	a.emit(EventProfileEdit, nil)
	return nil
}

// CancelEdit closes the form without writing.
func (a *App) CancelEdit() {
	a.editor.Cancel()
	a.emit(EventProfileEdit, nil)
}
