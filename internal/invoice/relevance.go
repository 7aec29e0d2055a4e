package invoice

import (
	"strings"

	"github.com/papayaah/invoicees/constants"
)

// IsInvoiceRelated is the cheap gate in front of the model: the utterance
// qualifies if it contains any relevance keyword, case-insensitively.
func IsInvoiceRelated(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, kw := range constants.RelevanceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
