// Package share implements the portable assignment list format: a
// JSON array of assignment records, optionally packed into a URL-safe
// string for share links.
package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandeepkv93/assignd/internal/model"
)

var ErrInvalidPayload = errors.New("share: invalid payload")

// Export renders the assignment list as indented JSON for files.
func Export(assignments []model.Assignment) ([]byte, error) {
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	return json.MarshalIndent(assignments, "", "  ")
}

// Import parses an exported list. The whole payload is rejected unless
// every element carries at least an id and a title; a partial accept
// would leave the list half-imported with no way to tell which records
// were dropped.
func Import(data []byte) ([]model.Assignment, error) {
	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: not a JSON array: %v", ErrInvalidPayload, err)
	}
	for i, element := range probe {
		if _, ok := element["id"]; !ok {
			return nil, fmt.Errorf("%w: element %d has no id", ErrInvalidPayload, i)
		}
		if _, ok := element["title"]; !ok {
			return nil, fmt.Errorf("%w: element %d has no title", ErrInvalidPayload, i)
		}
	}

	var out []model.Assignment
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return out, nil
}

// EncodePayload packs the list into a URL-safe string for share links.
func EncodePayload(assignments []model.Assignment) (string, error) {
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	data, err := json.Marshal(assignments)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodePayload is the inverse of EncodePayload, with the same
// validation as Import.
func DecodePayload(payload string) ([]model.Assignment, error) {
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad encoding: %v", ErrInvalidPayload, err)
	}
	return Import(data)
}
