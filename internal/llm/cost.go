package llm

// Price is USD per one million tokens.
type Price struct {
	Input  float64
	Output float64
}

// DefaultPrice applies to models with no catalog or legacy price.
var DefaultPrice = Price{Input: 0.15, Output: 0.60}

// legacyPrices covers endpoints that were billed before the catalog carried prices.
var legacyPrices = map[string]Price{
	"databricks-llama-4-maverick":             {Input: 0.15, Output: 0.60},
	"databricks-meta-llama-3-1-70b-instruct":  {Input: 0.20, Output: 0.80},
	"databricks-meta-llama-3-1-405b-instruct": {Input: 0.50, Output: 2.00},
	"databricks-dbrx-instruct":                {Input: 0.75, Output: 2.25},
}

// PriceFor resolves the price of a model: catalog entry, then legacy table, then default.
func (c *Catalog) PriceFor(modelID string) Price {
	if c != nil {
		if m, ok := c.Lookup(modelID); ok && (m.InputPricePerM > 0 || m.OutputPricePerM > 0) {
			return Price{Input: m.InputPricePerM, Output: m.OutputPricePerM}
		}
	}
	if p, ok := legacyPrices[modelID]; ok {
		return p
	}
	return DefaultPrice
}

// EstimateCost returns the approximate USD cost of one call.
func (c *Catalog) EstimateCost(modelID string, promptTokens, completionTokens int) float64 {
	p := c.PriceFor(modelID)
	return float64(promptTokens)/1_000_000*p.Input + float64(completionTokens)/1_000_000*p.Output
}
