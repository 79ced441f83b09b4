package ledger

import (
	"fmt"
	"strconv"
)

// quantityAliases are the accepted spellings of the quantity field,
// checked in order. Older clients send French variants, including two
// mojibake forms of "quantité".
var quantityAliases = []string{"quantity", "quantite", "quantiteAc", "quantitAc", "quantité"}

// QuantityFromPayload extracts the quantity magnitude from a decoded
// request body, accepting any known alias. A missing quantity returns
// 0, which fails the positive-quantity check downstream. A present but
// unparseable value is an error. Fractional values are truncated.
func QuantityFromPayload(payload map[string]any) (int, error) {
	for _, alias := range quantityAliases {
		raw, ok := payload[alias]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return int(v), nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, v)
			}
			return int(f), nil
		default:
			return 0, fmt.Errorf("%w: unsupported value type", ErrInvalidQuantity)
		}
	}
	return 0, nil
}

// IntFromPayload reads an integer field such as a product or supplier
// id from a decoded request body.
func IntFromPayload(payload map[string]any, key string) (int, bool) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// StringFromPayload reads an optional string field from a decoded
// request body.
func StringFromPayload(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
