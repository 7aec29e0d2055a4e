package constants

// UntitledItem is the description given to line items that arrive without one.
const UntitledItem = "Untitled item"

// DefaultUpdateMessage is shown when the model returned JSON without a message.
const DefaultUpdateMessage = "Invoice updated"

// RelevanceKeywords gate whether an utterance is sent to the model. Matching is
// case-insensitive substring containment, so "add" also matches "address".
// Bare question words are left out so general questions go to the docs.
var RelevanceKeywords = []string{
	"invoice", "bill", "client", "customer", "business", "company",
	"item", "product", "service", "price", "cost", "amount",
	"bank", "account", "payment", "address", "email", "phone",
	"add", "set", "change", "update", "create", "export", "pdf",
	"layout", "template", "help", "my", "name",
}

// PaymentKeywords mark a top-level update key as carrying payment details.
var PaymentKeywords = []string{
	"payment", "pay", "wallet", "bitcoin", "crypto", "venmo",
	"paypal", "bank", "account", "routing", "iban", "swift", "wise",
}

// PaymentSynthesisExclusions are lowercased keys never folded into payment
// instructions, even when they contain a payment keyword.
var PaymentSynthesisExclusions = map[string]struct{}{
	"businessname":  {},
	"business":      {},
	"clientname":    {},
	"client":        {},
	"clientemail":   {},
	"businessemail": {},
	"items":         {},
	"notes":         {},
	"message":       {},
	"description":   {},
	"duedate":       {},
}

// NestedPaymentSources are checked in order when the update has no
// paymentInstructions of its own. A dotted path reaches one level down.
var NestedPaymentSources = []string{
	"invoiceDetails.paymentInstructions",
	"paymentInfo",
	"paymentDetails",
	"paymentOptions",
}

// ItemPriceAliases are tried in order when resolving a line item's unit price.
var ItemPriceAliases = []string{"unitPrice", "price", "rate", "amount", "cost"}

// ItemQuantityAliases are tried in order when resolving a line item's quantity.
var ItemQuantityAliases = []string{"quantity", "qty"}
