// Package invoice folds model-produced updates into invoice snapshots.
//
// A merge runs three stages over the raw update, each returning a new value:
// Reconcile fixes misplaced or misnamed fields, SynthesizePaymentInstructions
// gathers stray payment details, and NormalizeItems turns the item list into
// line items. Merger.Merge then applies the result to the current invoice.
package invoice

import (
	"log/slog"
	"slices"

	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/rawjson"
)

type textField struct {
	key string
	set func(inv *entity.Invoice, v string)
}

var textSetters = []textField{
	{"invoiceNumber", func(inv *entity.Invoice, v string) { inv.InvoiceNumber = v }},
	{"invoiceDate", func(inv *entity.Invoice, v string) { inv.InvoiceDate = v }},
	{"dueDate", func(inv *entity.Invoice, v string) { inv.DueDate = v }},
	{"businessName", func(inv *entity.Invoice, v string) { inv.BusinessName = v }},
	{"businessEmail", func(inv *entity.Invoice, v string) { inv.BusinessEmail = v }},
	{"businessAddress", func(inv *entity.Invoice, v string) { inv.BusinessAddress = v }},
	{"businessPhone", func(inv *entity.Invoice, v string) { inv.BusinessPhone = v }},
	{"clientName", func(inv *entity.Invoice, v string) { inv.ClientName = v }},
	{"clientEmail", func(inv *entity.Invoice, v string) { inv.ClientEmail = v }},
	{"clientAddress", func(inv *entity.Invoice, v string) { inv.ClientAddress = v }},
	{"clientPhone", func(inv *entity.Invoice, v string) { inv.ClientPhone = v }},
	{"bankName", func(inv *entity.Invoice, v string) { inv.BankName = v }},
	{"bankAccountNumber", func(inv *entity.Invoice, v string) { inv.BankAccountNumber = v }},
	{"bankAccountType", func(inv *entity.Invoice, v string) { inv.BankAccountType = v }},
	{"bankBranch", func(inv *entity.Invoice, v string) { inv.BankBranch = v }},
	{"paymentInstructions", func(inv *entity.Invoice, v string) { inv.PaymentInstructions = v }},
	{"notes", func(inv *entity.Invoice, v string) { inv.Notes = v }},
}

// Merger applies raw updates to invoices.
type Merger struct {
	logger *slog.Logger
}

// NewMerger returns a merger that reports corrections to logger. A nil logger
// discards them.
func NewMerger(logger *slog.Logger) *Merger {
	return &Merger{logger: orDiscard(logger)}
}

var defaultMerger = NewMerger(nil)

// MergeInvoiceUpdate merges update into current without logging.
func MergeInvoiceUpdate(current entity.Invoice, update *rawjson.Object) entity.Invoice {
	return defaultMerger.Merge(current, update)
}

// Merge returns current with update applied. current is never modified.
//
// Text fields present in the update overwrite the snapshot (an empty string
// clears). Absent or null fields keep their value. Items are appended, never
// replaced, and any total the model sent is ignored.
func (m *Merger) Merge(current entity.Invoice, update *rawjson.Object) entity.Invoice {
	merged := current
	merged.Items = slices.Clone(current.Items)
	if merged.Items == nil {
		merged.Items = []entity.LineItem{}
	}
	if update.Len() == 0 {
		m.logger.Debug("invoice.merge.empty", "invoice_id", current.ID)
		return merged
	}

	u, fixes := Reconcile(update, m.logger)
	u = SynthesizePaymentInstructions(u, m.logger)

	if violations, err := CheckUpdateShape(u); err != nil {
		m.logger.Error("invoice.merge.schema_unavailable", "err", err)
	} else if len(violations) > 0 {
		m.logger.Warn("invoice.merge.shape", "invoice_id", current.ID, "violations", violations)
	}

	changed := make([]string, 0, len(textSetters))
	for _, f := range textSetters {
		v, ok := u.Get(f.key)
		if !ok {
			continue
		}
		text, present := toText(f.key, v)
		if !present {
			continue
		}
		f.set(&merged, text)
		changed = append(changed, f.key)
	}

	added := 0
	if v, ok := u.Get("items"); ok {
		if raw, isList := v.([]any); isList {
			items := NormalizeItems(raw, m.logger)
			merged.Items = append(merged.Items, items...)
			added = len(items)
		}
	}

	m.logger.Debug("invoice.merge.applied",
		"invoice_id", current.ID,
		"fields", changed,
		"items_added", added,
		"fixes", len(fixes),
	)
	return merged
}
