package httputil_test

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/constelviz/constel/pkg/httputil"
)

func ExampleCache() {
	// Cache fetched payload metadata for a day.
	dir := filepath.Join(os.TempDir(), "constel-example")
	cache, err := httputil.NewCache(dir, 24*time.Hour)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	// Store a value
	data := map[string]string{"document": "doc-42", "title": "Letters 1912"}
	if err := cache.Set("payload:doc-42", data); err != nil {
		fmt.Println("Error:", err)
		return
	}

	// Retrieve the value
	var result map[string]string
	if ok, err := cache.Get("payload:doc-42", &result); ok && err == nil {
		fmt.Println("Document:", result["document"])
		fmt.Println("Title:", result["title"])
	}

	// Clean up
	os.RemoveAll(dir)
	// Output:
	// Document: doc-42
	// Title: Letters 1912
}

func ExampleCache_miss() {
	dir := filepath.Join(os.TempDir(), "constel-example-miss")
	cache, _ := httputil.NewCache(dir, time.Hour)
	defer os.RemoveAll(dir)

	// A document that was never fetched is a plain miss, not an error.
	var result string
	ok, err := cache.Get("payload:doc-missing", &result)
	fmt.Println("Found:", ok)
	fmt.Println("Error:", err)
	// Output:
	// Found: false
	// Error: <nil>
}

func ExampleNewCache_defaultDir() {
	// Pass empty string to use default directory (~/.cache/constel/)
	cache, err := httputil.NewCache("", 24*time.Hour)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Cache TTL:", cache.TTL())
	// Output:
	// Cache TTL: 24h0m0s
}
