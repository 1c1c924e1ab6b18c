package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stagehand/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Product{
		{Name: "Cosmic Glow Lamp", Scene: "LampScene", Description: "lamp, light, rgb, glowing"},
		{Name: "Stealth Gaming Mouse", Scene: "MouseScene", Description: "mouse, gaming, wireless"},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return cat
}

func completionResponse(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{"content": content},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}
}

func TestClassifyProductRequest(t *testing.T) {
	server := httptest.NewServer(completionResponse(t, `{"intent":"product_request","product_name":"Cosmic Glow Lamp"}`))
	defer server.Close()

	client := NewClient("test", WithBaseURL(server.URL))
	result, err := client.Classify(context.Background(), "can you show the lamp?", testCatalog(t))
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if result.Intent != IntentProductRequest {
		t.Fatalf("expected product_request intent, got %q", result.Intent)
	}
	if result.ProductPhrase != "Cosmic Glow Lamp" {
		t.Fatalf("unexpected product phrase %q", result.ProductPhrase)
	}
}

func TestClassifyCodeFencedPayload(t *testing.T) {
	content := "```json\n{\"intent\":\"product_request\",\"product_name\":\"Stealth Gaming Mouse\"}\n```"
	server := httptest.NewServer(completionResponse(t, content))
	defer server.Close()

	client := NewClient("test", WithBaseURL(server.URL))
	result, err := client.Classify(context.Background(), "price of the mouse?", testCatalog(t))
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if result.Intent != IntentProductRequest || result.ProductPhrase != "Stealth Gaming Mouse" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestClassifyGarbagePayloadIsUnparseable(t *testing.T) {
	server := httptest.NewServer(completionResponse(t, "sorry, I cannot help with that"))
	defer server.Close()

	client := NewClient("test", WithBaseURL(server.URL))
	result, err := client.Classify(context.Background(), "show me the lamp", testCatalog(t))
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if result.Intent != IntentUnparseable {
		t.Fatalf("expected unparseable intent, got %q", result.Intent)
	}
}

func TestClassifyMissingProductNameIsUnparseable(t *testing.T) {
	server := httptest.NewServer(completionResponse(t, `{"intent":"product_request","product_name":null}`))
	defer server.Close()

	client := NewClient("test", WithBaseURL(server.URL))
	result, err := client.Classify(context.Background(), "show me something", testCatalog(t))
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if result.Intent != IntentUnparseable {
		t.Fatalf("expected unparseable intent, got %q", result.Intent)
	}
}

func TestClassifyHTTPErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := NewClient("test", WithBaseURL(server.URL))
	_, err := client.Classify(context.Background(), "show me the lamp", testCatalog(t))
	if err == nil {
		t.Fatal("expected an error for http 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}

func TestClassifyRequiresAPIKey(t *testing.T) {
	client := NewClient("")
	if client.Enabled() {
		t.Fatal("client without key should report disabled")
	}
	if _, err := client.Classify(context.Background(), "show me the lamp", testCatalog(t)); err == nil {
		t.Fatal("expected an error without api key")
	}
}

func TestPassesPrefilter(t *testing.T) {
	cat := testCatalog(t)
	cases := []struct {
		comment string
		want    bool
	}{
		{"show me the lamp", true},          // trigger word
		{"cosmic glow lamp!!", true},        // product name
		{"is it wireless?", true},           // description keyword
		{"hello from brazil", false},        // chatter
		{"great stream today", false},       // chatter
		{"how much is shipping", true},      // trigger phrase
		{"", false},
	}
	for _, tc := range cases {
		if got := PassesPrefilter(tc.comment, cat); got != tc.want {
			t.Errorf("PassesPrefilter(%q) = %v, want %v", tc.comment, got, tc.want)
		}
	}
}
