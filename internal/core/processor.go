package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/papayaah/invoicees/constants"
	"github.com/papayaah/invoicees/internal/common"
	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/invoice"
	"github.com/papayaah/invoicees/internal/llm"
	"github.com/papayaah/invoicees/internal/repository"
)

const (
	docsFoundPrefix     = "Here's what I found in the documentation:\n\n"
	offTopicMessage     = "This app is focused on invoice generation. Please refer to the documentation for available commands."
	sessionResetMessage = "Session was reset. Please try your request again."
	unavailableMessage  = "AI model not available. This feature requires an active language model."
)

// Result is what one utterance produced. Invoice is nil when the utterance was
// off topic or the model call failed.
type Result struct {
	Message       string
	Invoice       *entity.Invoice
	Layout        constants.Layout
	LayoutChanged bool
	Relevant      bool
}

// Processor turns a user utterance into an invoice: relevance gate, prompt,
// model call, extraction, then merge.
type Processor struct {
	logger   *slog.Logger
	session  llm.Session
	docs     llm.DocSearcher
	invoices repository.InvoiceRepository
	merger   *invoice.Merger
	now      func() time.Time
}

// NewProcessor wires a processor. docs and invoices may be nil: without docs
// every off-topic utterance gets the fixed reply, and without invoices
// nothing is persisted.
func NewProcessor(
	logger *slog.Logger,
	session llm.Session,
	docs llm.DocSearcher,
	invoices repository.InvoiceRepository,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:   logger,
		session:  session,
		docs:     docs,
		invoices: invoices,
		merger:   invoice.NewMerger(logger),
		now:      time.Now,
	}
}

// HandleUtterance applies the utterance to a brand new invoice, so concurrent
// or late completions never touch a snapshot another request owns.
func (p *Processor) HandleUtterance(ctx context.Context, utterance string) (Result, error) {
	return p.Apply(ctx, entity.NewInvoice(p.now()), utterance)
}

// Apply folds the utterance into current and returns the merged snapshot.
// Only model transport failures are returned as errors; they wrap
// common.ErrAborted or common.ErrModelUnavailable.
func (p *Processor) Apply(ctx context.Context, current entity.Invoice, utterance string) (Result, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	log := p.logger.With("request_id", reqID)

	p.transition(log, constants.StateGateChecking)
	if !invoice.IsInvoiceRelated(utterance) {
		p.transition(log, constants.StateDocsLookup)
		res := Result{Message: p.lookupDocs(ctx, log, utterance)}
		p.transition(log, constants.StateIdle)
		return res, nil
	}

	ctx = common.WithInvoiceID(ctx, current.ID.String())
	log = log.With("invoice_id", current.ID.String())

	p.transition(log, constants.StatePrompting)
	prompt := llm.BuildUserPrompt(current, utterance)

	p.transition(log, constants.StateModelCall)
	start := time.Now()
	raw, err := p.session.Prompt(ctx, prompt)
	if err != nil {
		p.transition(log, constants.StateIdle)
		return p.modelFailure(log, err)
	}
	log.Debug("processor.model.ok",
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	p.transition(log, constants.StateExtracting)
	resp := llm.ParseAIResponse(raw)

	updated := current
	if resp.HasUpdate() {
		p.transition(log, constants.StateReconciling)
		p.transition(log, constants.StateMerging)
		updated = p.merger.Merge(current, resp.InvoiceUpdate)
	}
	p.persist(ctx, log, updated)

	res := Result{Message: resp.Message, Invoice: &updated, Relevant: true}
	if layout, ok := constants.DetectLayout(utterance); ok {
		res.Layout = layout
		res.LayoutChanged = true
	}
	p.transition(log, constants.StateIdle)

	log.Info("processor.utterance.ok",
		"items", len(updated.Items),
		"total", invoice.CalculateTotal(updated.Items),
		"updated", resp.HasUpdate(),
	)
	return res, nil
}

func (p *Processor) lookupDocs(ctx context.Context, log *slog.Logger, utterance string) string {
	if p.docs == nil {
		return offTopicMessage
	}
	docs, err := p.docs.Search(ctx, utterance)
	if err != nil {
		log.Warn("processor.docs.error", "error", err)
		return offTopicMessage
	}
	if len(docs) == 0 {
		return offTopicMessage
	}
	log.Debug("processor.docs.hit", "topic", docs[0].Topic, "matches", len(docs))
	return docsFoundPrefix + docs[0].Content
}

func (p *Processor) modelFailure(log *slog.Logger, err error) (Result, error) {
	res := Result{Relevant: true}
	if errors.Is(err, common.ErrAborted) {
		log.Warn("processor.model.aborted", "error", err)
		res.Message = sessionResetMessage
		return res, err
	}
	log.Error("processor.model.unavailable", "error", err)
	res.Message = unavailableMessage
	if !errors.Is(err, common.ErrModelUnavailable) {
		err = common.ModelUnavailableError(fmt.Sprintf("model call failed: %v", err), err)
	}
	return res, err
}

func (p *Processor) persist(ctx context.Context, log *slog.Logger, inv entity.Invoice) {
	if p.invoices == nil {
		return
	}
	if _, err := p.invoices.Save(ctx, inv); err != nil {
		log.Error("processor.persist.failed", "error", err)
	}
}

func (p *Processor) transition(log *slog.Logger, state constants.RequestState) {
	log.Debug("processor.state", "state", string(state))
}
