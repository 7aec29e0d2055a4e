package entity

import "time"

// Documentation is a help topic served when an utterance is not about invoicing.
type Documentation struct {
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	Keywords  []string  `json:"keywords"`
	CreatedAt time.Time `json:"created_at"`
}
