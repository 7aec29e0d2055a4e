package invoice

import (
	"log/slog"
	"strings"

	"github.com/papayaah/invoicees/constants"
	"github.com/papayaah/invoicees/internal/rawjson"
)

// Reconcile repairs the common mistakes a model makes when writing an invoice
// update and returns the corrected copy together with a list of the
// corrections applied. The input is not modified.
//
//   - Renames known synonyms (business -> businessName, bank_name -> bankName, ...)
//   - Removes "undefined" placeholders from name fields
//   - Turns a numeric items value into a single recovered line item
//   - Drops any model-computed total
//   - Lifts payment text out of nested blocks when paymentInstructions is missing
func Reconcile(update *rawjson.Object, logger *slog.Logger) (*rawjson.Object, []string) {
	logger = orDiscard(logger)
	if update.Len() == 0 {
		return update, nil
	}

	u := update.Clone()
	fixes := make([]string, 0, 4)

	// 1) synonyms; an alias only fills a canonical field that is still empty
	renamed := func(from, to string) {
		v, ok := u.Get(from)
		if !ok || !truthy(v) || isContainer(v) {
			return
		}
		if existing, _ := u.Get(to); !truthy(existing) {
			u.Set(to, v)
			fixes = append(fixes, from+"->"+to)
		} else {
			fixes = append(fixes, from+"(shadowed)")
		}
		u.Delete(from)
	}
	renamed("business", "businessName")
	renamed("client", "clientName")
	renamed("account_number", "bankAccountNumber")
	renamed("accountNumber", "bankAccountNumber")
	renamed("bank", "bankName")
	renamed("bank_name", "bankName")

	// 2) placeholder names
	for _, k := range []string{"businessName", "clientName"} {
		if s, ok := stringValue(u, k); ok && strings.EqualFold(strings.TrimSpace(s), "undefined") {
			u.Delete(k)
			fixes = append(fixes, k+"(undefined)")
		}
	}

	// 3) items given as a number
	if v, ok := u.Get("items"); ok {
		if _, isNum := v.(float64); isNum {
			if item := recoverItem(u); item != nil {
				u.Set("items", []any{item})
				fixes = append(fixes, "items(recovered)")
			} else {
				u.Delete("items")
				fixes = append(fixes, "items(number)")
			}
		}
	}

	// 4) totals are always derived from items
	if u.Has("total") {
		u.Delete("total")
		fixes = append(fixes, "total(dropped)")
	}

	// 5) payment text
	if v, ok := u.Get("paymentInstructions"); ok && isContainer(v) {
		if text := strings.Join(appendEntry(nil, "paymentInstructions", v, 1), "\n"); text != "" {
			u.Set("paymentInstructions", text)
		} else {
			u.Delete("paymentInstructions")
		}
		fixes = append(fixes, "paymentInstructions(flattened)")
	}
	if v, _ := u.Get("paymentInstructions"); !truthy(v) {
		for _, path := range constants.NestedPaymentSources {
			src, ok := lookupPath(u, path)
			if !ok || !truthy(src) {
				continue
			}
			text := paymentBlockText(path, src)
			if text == "" {
				continue
			}
			u.Set("paymentInstructions", text)
			fixes = append(fixes, path+"->paymentInstructions")
			break
		}
	}

	if len(fixes) > 0 {
		logger.Warn("invoice.reconcile.corrected", "fixes", fixes)
	}
	return u, fixes
}

// recoverItem builds a line item from the description and total the model put
// next to a numeric items value. It returns nil when there is no description.
func recoverItem(u *rawjson.Object) *rawjson.Object {
	details, _ := u.Object("invoiceDetails")

	var desc any
	if v, _ := details.Get("description"); truthy(v) {
		desc = v
	} else if v, _ := u.Get("description"); truthy(v) {
		desc = v
	}
	if desc == nil {
		return nil
	}

	price := 0.0
	if v, _ := details.Get("total"); truthy(v) {
		price = toNumber(v)
	} else if v, _ := u.Get("total"); truthy(v) {
		price = toNumber(v)
	}

	item := rawjson.New()
	item.Set("description", desc)
	item.Set("quantity", float64(1))
	item.Set("price", price)
	return item
}

// paymentBlockText flattens a nested payment block into "Key: value" lines.
// A plain string block is used as is.
func paymentBlockText(path string, v any) string {
	if !isContainer(v) {
		return strings.TrimSpace(scalarText(v))
	}
	key := path[strings.LastIndex(path, ".")+1:]
	return strings.Join(appendEntry(nil, key, v, 1), "\n")
}

func lookupPath(u *rawjson.Object, path string) (any, bool) {
	parent, rest, nested := strings.Cut(path, ".")
	if !nested {
		return u.Get(path)
	}
	obj, ok := u.Object(parent)
	if !ok {
		return nil, false
	}
	return obj.Get(rest)
}

func stringValue(u *rawjson.Object, key string) (string, bool) {
	v, _ := u.Get(key)
	s, ok := v.(string)
	return s, ok
}

func isContainer(v any) bool {
	switch v.(type) {
	case *rawjson.Object, []any:
		return true
	}
	return false
}
