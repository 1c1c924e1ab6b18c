package classifier

import (
	"encoding/json"
	"errors"
	"strings"
)

// decodeModelJSON decodes a JSON payload from a model response,
// tolerating markdown code fences and surrounding prose. Models asked
// for JSON still wrap it in ```json blocks often enough that strict
// decoding would misclassify valid answers.
func decodeModelJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}
	if err := json.Unmarshal([]byte(trimmed), target); err == nil {
		return nil
	}
	sanitized := extractJSONObject(stripCodeFence(trimmed))
	if sanitized == "" {
		return errors.New("no json object in payload")
	}
	return json.Unmarshal([]byte(sanitized), target)
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(content, "}")
	if end <= start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}
