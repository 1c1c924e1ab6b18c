package classifier

import (
	"fmt"
	"strings"

	"stagehand/internal/catalog"
)

// systemPromptHeader holds the fixed portion of the classification
// instructions. The product list is appended per request because it
// tracks the live catalog.
const systemPromptHeader = `You are a live-stream shopping assistant.
Determine if the viewer wants to SEE or is ASKING about a specific product.

Available products:
`

const systemPromptFooter = `
If the viewer mentions a product name OR its keywords, return that product's exact name from the list.
You must respond ONLY with a JSON object like: {"intent": "product_request", "product_name": "Exact Name From List"} or {"intent": "none", "product_name": null}.`

// buildSystemPrompt renders the instructions for the current catalog,
// one line per product with its description keywords for context.
func buildSystemPrompt(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(systemPromptHeader)
	for _, product := range cat.Products() {
		desc := strings.TrimSpace(product.Description)
		if desc == "" {
			desc = "no keywords"
		}
		fmt.Fprintf(&b, "- %q (keywords: %s)\n", product.Name, desc)
	}
	b.WriteString(systemPromptFooter)
	return b.String()
}
