package invoice

import (
	"log/slog"
	"strings"

	"github.com/papayaah/invoicees/constants"
	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/rawjson"
)

// NormalizeItems converts the model's free-form item list into line items.
// Every element yields exactly one line item, in order.
func NormalizeItems(raw []any, logger *slog.Logger) []entity.LineItem {
	logger = orDiscard(logger)
	out := make([]entity.LineItem, 0, len(raw))
	for i, el := range raw {
		item, guessed := normalizeItem(el)
		if guessed {
			logger.Debug("invoice.items.price_guessed", "index", i, "unit_price", item.UnitPrice)
		}
		out = append(out, item)
	}
	return out
}

// normalizeItem resolves one element. guessed reports that the price came
// from scanning unrelated numeric fields.
func normalizeItem(el any) (item entity.LineItem, guessed bool) {
	obj, ok := el.(*rawjson.Object)
	if !ok {
		// a bare string is read as the description
		desc, _ := el.(string)
		return entity.LineItem{Description: describe(desc), Quantity: 1}, false
	}

	// the first truthy alias decides the price, even when it does not parse
	var price any
	for _, k := range constants.ItemPriceAliases {
		if v, _ := obj.Get(k); truthy(v) {
			price = v
			break
		}
	}
	unit := toNumber(price)
	if price == nil {
		for _, k := range obj.Keys() {
			v, _ := obj.Get(k)
			if f, isNum := v.(float64); isNum && f > 0 {
				unit, guessed = f, true
				break
			}
		}
	}
	if unit < 0 {
		unit = 0
	}

	qty := 1.0
	for _, k := range constants.ItemQuantityAliases {
		if v, _ := obj.Get(k); truthy(v) {
			qty = toNumber(v)
			break
		}
	}

	desc, _ := obj.Get("description")
	text, _ := desc.(string)
	if text == "" && truthy(desc) {
		text = scalarText(desc)
	}
	return entity.LineItem{Description: describe(text), UnitPrice: unit, Quantity: qty}, guessed
}

func describe(s string) string {
	if strings.TrimSpace(s) == "" {
		return constants.UntitledItem
	}
	return s
}
