package service

import "github.com/google/uuid"

// Message is an email addressed to a user. To is filled from the user
// directory when left empty.
type Message struct {
	Kind    string
	UserID  uuid.UUID
	To      string
	Subject string
	Text    string
	Meta    map[string]any
}
