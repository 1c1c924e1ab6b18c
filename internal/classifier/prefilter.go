package classifier

import (
	"strings"

	"stagehand/internal/catalog"
)

// triggerWords are generic shopping-intent phrases. A comment carrying
// any of them is worth a model call even when it names no product.
var triggerWords = []string{
	"show", "see", "look", "display", "view", "preview",
	"buy", "get", "price", "cost", "how much", "can i", "open",
	"interested", "demo", "close up",
}

// PassesPrefilter reports whether a comment is plausibly about the
// catalog at all. It is a cheap substring screen that runs before the
// network call; false means the comment is certainly chatter and the
// model call can be skipped.
func PassesPrefilter(comment string, cat *catalog.Catalog) bool {
	lowered := strings.ToLower(comment)
	if strings.TrimSpace(lowered) == "" {
		return false
	}
	for _, trigger := range triggerWords {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	if cat == nil {
		return false
	}
	for _, product := range cat.Products() {
		if strings.Contains(lowered, strings.ToLower(product.Name)) {
			return true
		}
		// Descriptions are comma-separated keyword lists.
		for _, keyword := range strings.Split(strings.ToLower(product.Description), ",") {
			keyword = strings.TrimSpace(keyword)
			if keyword != "" && strings.Contains(lowered, keyword) {
				return true
			}
		}
	}
	return false
}
