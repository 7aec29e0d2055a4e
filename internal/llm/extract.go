package llm

import (
	"regexp"

	"github.com/papayaah/invoicees/constants"
	"github.com/papayaah/invoicees/internal/rawjson"
)

var (
	reFencedJSON = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")
	reBraceSpan  = regexp.MustCompile(`(\{[\s\S]*\})`)
)

// ParseAIResponse extracts the structured part of a model reply. It never
// fails: a reply without a parseable JSON object is returned as a plain
// message with no update.
//
// A fenced ```json block is preferred; otherwise the span from the first "{"
// to the last "}" is tried. When the object has no "invoiceUpdate" wrapper the
// whole object is taken as the update.
func ParseAIResponse(raw string) Response {
	candidate := jsonCandidate(raw)
	if candidate == "" {
		return Response{Message: raw}
	}
	parsed, err := rawjson.Decode([]byte(candidate))
	if err != nil {
		return Response{Message: raw}
	}

	resp := Response{Message: constants.DefaultUpdateMessage}
	if msg, ok := parsed.Get("message"); ok {
		if s, isStr := msg.(string); isStr && s != "" {
			resp.Message = s
		}
	}

	wrapped, present := parsed.Get("invoiceUpdate")
	switch u := wrapped.(type) {
	case *rawjson.Object:
		resp.InvoiceUpdate = u
	default:
		if !present || isEmptyValue(u) {
			resp.InvoiceUpdate = parsed
		}
		// a non-object wrapper (string, array, number) carries nothing to merge
	}
	return resp
}

func jsonCandidate(raw string) string {
	if m := reFencedJSON.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	if m := reBraceSpan.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	}
	return false
}
