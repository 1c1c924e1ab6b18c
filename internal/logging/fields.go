package logging

// Standardized structured logging keys. Using shared constants keeps the
// stream hub's field extraction and the console output consistent.
const (
	FieldComponent     = "component"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldProduct       = "product"
	FieldScene         = "scene"
	FieldAuthor        = "author"
	FieldGeneration    = "generation"
	FieldCorrelationID = "correlation_id"
)
