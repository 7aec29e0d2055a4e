package invoice

import "testing"

func TestIsInvoiceRelated(t *testing.T) {
	cases := map[string]bool{
		"What's the weather?":          false,
		"tell me a joke":               false,
		"":                             false,
		"add an item for $50":          true,
		"Set my BANK to Chase":         true,
		"switch to the compact layout": true,
		// substring containment: "address" is in "addressed"
		"the letter was addressed to me": true,
	}
	for in, want := range cases {
		if got := IsInvoiceRelated(in); got != want {
			t.Errorf("IsInvoiceRelated(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHumanizeKey(t *testing.T) {
	cases := map[string]string{
		"venmoHandle":    "Venmo handle",
		"venmo_handle":   "Venmo handle",
		"routing-number": "Routing number",
		"IBAN":           "IBAN",
		"swiftBIC":       "Swift BIC",
		"BTCWallet":      "BTC wallet",
		"paypal":         "Paypal",
		"account2Name":   "Account2 name",
		"":               "",
	}
	for in, want := range cases {
		if got := humanizeKey(in); got != want {
			t.Errorf("humanizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
