package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalProducts converts the selected products to JSON TEXT for storage.
// HTML escaping is disabled so product names with "&" read naturally in the
// database.
func marshalProducts(products []string) (string, error) {
	if products == nil {
		products = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(products); err != nil {
		return "", fmt.Errorf("marshal products: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalProducts parses JSON TEXT into the product list.
// Always returns a non-nil slice.
func unmarshalProducts(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return []string{}, nil
	}
	var products []string
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		return nil, fmt.Errorf("unmarshal products: %w", err)
	}
	if products == nil {
		products = []string{}
	}
	return products, nil
}
