// Package resolver matches free-text phrases against the product catalog.
// It is a pure scoring function with no side effects; the engine feeds it
// either the classifier's extracted product phrase or, when no classifier
// is configured, the raw comment text.
package resolver
