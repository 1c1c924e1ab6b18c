package dedup

import (
	"testing"
	"time"

	"stagehand/internal/classifier"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := New(time.Minute)
	result := classifier.Result{Intent: classifier.IntentProductRequest, ProductPhrase: "Cosmic Glow Lamp"}

	if _, ok := cache.Get("show me the lamp"); ok {
		t.Fatal("expected miss on empty cache")
	}
	cache.Put("show me the lamp", result)
	got, ok := cache.Get("show me the lamp")
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got != result {
		t.Fatalf("unexpected cached result %+v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := New(20 * time.Millisecond)
	cache.Put("lamp pls", classifier.Result{Intent: classifier.IntentNone})

	time.Sleep(40 * time.Millisecond)
	if _, ok := cache.Get("lamp pls"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestCacheFlush(t *testing.T) {
	cache := New(time.Minute)
	cache.Put("a", classifier.Result{Intent: classifier.IntentNone})
	cache.Put("b", classifier.Result{Intent: classifier.IntentNone})
	cache.Flush()
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache after flush, have %d entries", cache.Len())
	}
}

func TestCacheIgnoresEmptyKey(t *testing.T) {
	cache := New(time.Minute)
	cache.Put("", classifier.Result{Intent: classifier.IntentProductRequest})
	if cache.Len() != 0 {
		t.Fatal("empty key should not be stored")
	}
	if _, ok := cache.Get(""); ok {
		t.Fatal("empty key should never hit")
	}
}
