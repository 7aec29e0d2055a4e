package invoice

import (
	"log/slog"
	"strings"

	"github.com/papayaah/invoicees/constants"
	"github.com/papayaah/invoicees/internal/rawjson"
)

// SynthesizePaymentInstructions fills paymentInstructions from top-level keys
// that look payment related when the update carries none of its own. Keys are
// visited in the order the model wrote them. The input is not modified.
func SynthesizePaymentInstructions(update *rawjson.Object, logger *slog.Logger) *rawjson.Object {
	logger = orDiscard(logger)
	if update.Len() == 0 {
		return update
	}
	if v, _ := update.Get("paymentInstructions"); truthy(v) {
		return update
	}

	var (
		lines []string
		used  []string
	)
	for _, k := range update.Keys() {
		if !isPaymentKey(k) {
			continue
		}
		v, _ := update.Get(k)
		if !isContainer(v) && !truthy(v) {
			continue
		}
		before := len(lines)
		lines = appendEntry(lines, k, v, 1)
		if len(lines) > before {
			used = append(used, k)
		}
	}
	if len(lines) == 0 {
		return update
	}

	u := update.Clone()
	u.Set("paymentInstructions", strings.Join(lines, "\n"))
	logger.Info("invoice.payment.synthesized", "keys", used, "lines", len(lines))
	return u
}

// isPaymentKey is a substring match, so unrelated keys such as "displayName"
// (which contains "pay") qualify too.
func isPaymentKey(key string) bool {
	lk := strings.ToLower(key)
	if _, excluded := constants.PaymentSynthesisExclusions[lk]; excluded {
		return false
	}
	for _, kw := range constants.PaymentKeywords {
		if strings.Contains(lk, kw) {
			return true
		}
	}
	return false
}
