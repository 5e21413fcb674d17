package parser

import (
	"math"
	"strings"
)

// modelPricing holds USD rates per million tokens.
type modelPricing struct {
	InputPerMtok  float64
	OutputPerMtok float64
}

// pricing maps model name prefixes to rates. Longest matching prefix wins so
// e.g. "gpt-4o-mini" is not priced as "gpt-4o". Azure deployments resolve by
// the underlying model name they are created from.
var pricing = map[string]modelPricing{
	"gpt-4o":        {InputPerMtok: 2.50, OutputPerMtok: 10.00},
	"gpt-4o-mini":   {InputPerMtok: 0.15, OutputPerMtok: 0.60},
	"gpt-4.1":       {InputPerMtok: 2.00, OutputPerMtok: 8.00},
	"gpt-4.1-mini":  {InputPerMtok: 0.40, OutputPerMtok: 1.60},
	"gpt-4.1-nano":  {InputPerMtok: 0.10, OutputPerMtok: 0.40},
	"gpt-4-turbo":   {InputPerMtok: 10.00, OutputPerMtok: 30.00},
	"gpt-5":         {InputPerMtok: 1.25, OutputPerMtok: 10.00},
	"gpt-5-mini":    {InputPerMtok: 0.25, OutputPerMtok: 2.00},
}

// CostUSD computes the cost of one invocation from token counts, rounded to 4
// decimals. Unknown models cost 0.
func CostUSD(model string, promptTokens, completionTokens int) float64 {
	p, ok := lookupPricing(model)
	if !ok {
		return 0
	}
	cost := float64(promptTokens)/1e6*p.InputPerMtok + float64(completionTokens)/1e6*p.OutputPerMtok
	return RoundCost(cost)
}

// RoundCost rounds a USD amount to 4 decimal places.
func RoundCost(cost float64) float64 {
	return math.Round(cost*1e4) / 1e4
}

func lookupPricing(model string) (modelPricing, bool) {
	model = strings.ToLower(model)
	if p, ok := pricing[model]; ok {
		return p, true
	}
	var best string
	for prefix := range pricing {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return modelPricing{}, false
	}
	return pricing[best], true
}
