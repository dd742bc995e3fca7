package core

import "github.com/google/uuid"

// NewSessionToken returns a random token used to recognise a pin-mode
// session after the host state was swapped underneath it (undo, reload).
func NewSessionToken() string {
	return uuid.New().String()
}

// IsSessionToken reports whether s was produced by NewSessionToken.
func IsSessionToken(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
