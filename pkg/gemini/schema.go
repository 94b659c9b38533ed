package gemini

import "fmt"

// QuoteSchema constrains the model to the four quote fields and nothing else.
var QuoteSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"symbol":         map[string]any{"type": "string"},
		"price":          map[string]any{"type": "number"},
		"change":         map[string]any{"type": "number"},
		"percent_change": map[string]any{"type": "number"},
	},
	"required":             []string{"symbol", "price", "change", "percent_change"},
	"additionalProperties": false,
}

const quotePromptTemplate = `You are given a rendered stock quote page from the Stock Exchange of Thailand (SET) for %[1]s.
Extract the following values from the page text and the screenshot:

- price: the current (last traded) price of %[1]s as a decimal number
- change: the absolute change, e.g. +0.10 or -0.05, as a decimal number
- percent_change: the percentage change, e.g. +0.70%%, as a decimal number WITHOUT the %% sign
- symbol: return "%[1]s"

Rules:
1) Prefer the value shown as the current price.
2) Drop %% signs and parentheses; treat a unicode minus as a negative sign.
3) Answer only with JSON matching the given schema.
`

// QuotePrompt builds the extraction instruction for one symbol.
func QuotePrompt(symbol string) string {
	return fmt.Sprintf(quotePromptTemplate, symbol)
}
