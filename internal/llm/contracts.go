package llm

import (
	"context"

	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/rawjson"
)

// Session is a conversation with a language model. Prompt sends one user
// message and returns the model's raw text reply.
//
// Implementations return an error matching common.ErrAborted when the call
// was cancelled, and common.ErrModelUnavailable for every other failure.
type Session interface {
	Prompt(ctx context.Context, text string) (string, error)
}

// DocSearcher looks up help topics for utterances the model is not asked about.
type DocSearcher interface {
	Search(ctx context.Context, query string) ([]entity.Documentation, error)
}

// Response is what a model reply means to the invoice assistant.
type Response struct {
	Message string
	// InvoiceUpdate is nil when the reply carried no usable JSON object.
	InvoiceUpdate *rawjson.Object
}

// HasUpdate reports whether the reply carries fields to merge.
func (r Response) HasUpdate() bool {
	return r.InvoiceUpdate.Len() > 0
}
