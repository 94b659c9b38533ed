package quote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Fields is the validated numeric payload extracted from a model response.
type Fields struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
}

const fence = "```"

// numericNoise is stripped from textual numbers before parsing. Parentheses are
// removed without flipping the sign.
var numericNoise = strings.NewReplacer(
	",", "",
	"%", "",
	"(", "",
	")", "",
	"−", "-",
)

// Normalize turns a raw model response into Fields. The symbol is always
// forced to the given value.
func Normalize(raw, symbol string) (Fields, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return Fields{}, err
	}

	f := Fields{Symbol: symbol}
	for _, field := range []struct {
		name string
		dst  *float64
	}{
		{"price", &f.Price},
		{"change", &f.Change},
		{"percent_change", &f.PercentChange},
	} {
		v, err := toFloat(field.name, obj[field.name])
		if err != nil {
			return Fields{}, err
		}
		*field.dst = v
	}

	if f.Price <= 0 {
		return Fields{}, fmt.Errorf("%w: price %v must be positive", ErrImplausibleValue, f.Price)
	}

	return f, nil
}

// decodeObject tries a direct decode first and falls back to a single
// fence-stripping pass.
func decodeObject(raw string) (map[string]any, error) {
	if obj, err := unmarshalObject(raw); err == nil && obj != nil {
		return obj, nil
	}

	obj, err := unmarshalObject(StripFence(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedResponse)
	}
	return obj, nil
}

// unmarshalObject decodes one JSON value keeping numbers as json.Number, so
// out-of-range literals reach field validation instead of failing the decode.
func unmarshalObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return obj, nil
}

// StripFence removes a surrounding markdown code fence, optionally tagged json.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, fence+"json") {
		s = strings.TrimSpace(s[len(fence+"json"):])
	}
	if strings.HasPrefix(s, fence) {
		s = strings.TrimSpace(s[len(fence):])
	}
	if strings.HasSuffix(s, fence) {
		s = strings.TrimSpace(s[:len(s)-len(fence)])
	}
	return s
}

func toFloat(name string, v any) (float64, error) {
	switch x := v.(type) {
	case json.Number:
		return parseDecimal(name, x, x.String())
	case string:
		return parseDecimal(name, x, numericNoise.Replace(strings.TrimSpace(x)))
	default:
		return 0, &FieldError{Field: name, Value: v}
	}
}

func parseDecimal(name string, orig any, s string) (float64, error) {
	if s == "" {
		return 0, &FieldError{Field: name, Value: orig, Err: errors.New("empty after cleanup")}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &FieldError{Field: name, Value: orig, Err: err}
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, &FieldError{Field: name, Value: orig, Err: errors.New("out of float64 range")}
	}
	return f, nil
}
