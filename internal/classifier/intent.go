package classifier

import "strings"

// Intent describes what the model decided a comment is asking for.
type Intent string

const (
	// IntentProductRequest means the viewer wants to see or is asking
	// about a specific product.
	IntentProductRequest Intent = "product_request"
	// IntentNone means the comment is unrelated chatter.
	IntentNone Intent = "none"
	// IntentUnparseable means the model answered but the payload could
	// not be understood. Callers treat it like IntentNone; it exists so
	// the malformed-response rate stays observable.
	IntentUnparseable Intent = "unparseable"
)

// Result is the outcome of classifying one comment.
type Result struct {
	Intent        Intent
	ProductPhrase string
}

// parseIntent maps the model's free-form intent string onto the tagged
// type. Anything unrecognized is chatter, not an error.
func parseIntent(raw string) Intent {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(IntentProductRequest):
		return IntentProductRequest
	default:
		return IntentNone
	}
}
