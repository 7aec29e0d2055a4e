package llm

import (
	"fmt"
	"strings"

	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/invoice"
)

const replyShape = `{
  "message": "short summary of what was understood or done",
  "invoiceUpdate": {
    "businessName": "company name if mentioned",
    "clientName": "client name if mentioned",
    "items": [{"description": "item", "unitPrice": number, "quantity": 1}],
    "paymentInstructions": "all payment details in one field (bank info, due dates, payment methods, etc.)",
    "notes": "any extra details that don't fit standard fields"
  }
}`

// BuildSystemPrompt composes the instructions sent once per session: the
// reply shape and the field naming rules the merge relies on.
func BuildSystemPrompt() string {
	rules := []string{
		`ALWAYS use the exact field names: "businessName", "clientName", "items", "paymentInstructions", "notes".`,
		`Other fields you may set: "businessEmail", "businessAddress", "businessPhone", "clientEmail", "clientAddress", "clientPhone", "bankName", "bankAccountNumber", "bankAccountType", "bankBranch", "invoiceNumber", "invoiceDate", "dueDate".`,
		`NEVER use "business", "client", "total"; these are wrong field names.`,
		`"items" must ALWAYS be an array of objects, never a number.`,
		"Only include fields that the user mentioned or changed.",
		"Never invent names, prices, or quantities.",
		`Place all unrecognized or unrelated information in "notes".`,
		"Keep responses conversational but concise; you are part of a chat experience.",
		"If the user's message isn't about an invoice, politely redirect them back to invoice-related tasks.",
	}

	var b strings.Builder
	b.WriteString("You are an AI invoice assistant.\n")
	b.WriteString("Your job is to extract and structure invoicing information from natural language.\n\n")
	b.WriteString("When the user provides details, identify only what is explicitly stated and return it in this exact JSON format:\n\n")
	b.WriteString(replyShape)
	b.WriteString("\n\nCRITICAL RULES:\n")
	for _, r := range rules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildUserPrompt renders the invoice summary the model sees with each
// utterance. Only names, the item count and the running total are shared.
func BuildUserPrompt(inv entity.Invoice, utterance string) string {
	var b strings.Builder
	b.WriteString("Current invoice state:\n")
	fmt.Fprintf(&b, "- Business: %s\n", orNotSet(inv.BusinessName))
	fmt.Fprintf(&b, "- Client: %s\n", orNotSet(inv.ClientName))
	fmt.Fprintf(&b, "- Items: %d item(s)\n", len(inv.Items))
	fmt.Fprintf(&b, "- Total: $%.2f\n", invoice.CalculateTotal(inv.Items))
	b.WriteString("\nUser request: ")
	b.WriteString(utterance)
	b.WriteString("\n\n")
	b.WriteString(`Respond in JSON: {"message": "text", "invoiceUpdate": {...}}`)
	return b.String()
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}
