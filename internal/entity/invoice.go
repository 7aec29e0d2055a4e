package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LineItem is one billed line. Items are only ever appended by merges.
type LineItem struct {
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    float64 `json:"quantity"`
}

// Invoice is the canonical, always fully populated invoice snapshot.
// Unset text fields are "" and an invoice without items has an empty slice.
type Invoice struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	InvoiceNumber string `json:"invoiceNumber"`
	InvoiceDate   string `json:"invoiceDate"`
	DueDate       string `json:"dueDate"`

	BusinessName    string `json:"businessName"`
	BusinessEmail   string `json:"businessEmail"`
	BusinessAddress string `json:"businessAddress"`
	BusinessPhone   string `json:"businessPhone"`

	ClientName    string `json:"clientName"`
	ClientEmail   string `json:"clientEmail"`
	ClientAddress string `json:"clientAddress"`
	ClientPhone   string `json:"clientPhone"`

	BankName          string `json:"bankName"`
	BankAccountNumber string `json:"bankAccountNumber"`
	BankAccountType   string `json:"bankAccountType"`
	BankBranch        string `json:"bankBranch"`

	PaymentInstructions string `json:"paymentInstructions"`

	Items []LineItem `json:"items"`
	Notes string     `json:"notes"`
}

// NewInvoice returns an empty invoice with a fresh identity.
func NewInvoice(now time.Time) Invoice {
	return Invoice{
		ID:        uuid.New(),
		CreatedAt: now.UTC(),
		Items:     []LineItem{},
	}
}

// HasPaymentDetails reports whether any bank field or the free-text payment
// instructions carry content.
func (inv Invoice) HasPaymentDetails() bool {
	for _, v := range []string{
		inv.BankName,
		inv.BankAccountNumber,
		inv.BankAccountType,
		inv.BankBranch,
		inv.PaymentInstructions,
	} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// SavedInvoice is an invoice as stored in the collection.
type SavedInvoice struct {
	Invoice
	SavedAt time.Time `json:"savedAt"`
}
