//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "commerce-api"
	ConsumerName = "storefront"

	StateItemPublished = "item it-101 is published with stock 5"
	StateItemMissing   = "no item with id it-404"
	StateItemLowStock  = "item it-101 is published with stock 1"
)

const (
	ExistingItemID = "it-101"
	MissingItemID  = "it-404"
	SessionID      = "pact-session"

	ExampleItemTitle = "Pact Lamp"
	ExampleItemPrice = "40.00"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderRequest is the checkout body used by the order interactions.
func ExampleOrderRequest(quantity int) map[string]any {
	return map[string]any{
		"items": []map[string]any{{"itemId": ExistingItemID, "quantity": quantity}},
		"shippingAddress": map[string]any{
			"line1":   "1 Pact Way",
			"city":    "Springfield",
			"country": "US",
		},
		"paymentMethod": "card",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
