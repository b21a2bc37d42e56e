package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is the normalized form of a paginated response.
type Page[T any] struct {
	Items         []T
	TotalElements int64
	TotalPages    int
	Number        int
	Size          int
}

type pageEnvelope struct {
	Content       json.RawMessage `json:"content"`
	TotalElements int64           `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
	Number        int             `json:"number"`
	Size          int             `json:"size"`
}

// Items decodes a list endpoint's payload, accepting either a raw JSON array
// or a paginated envelope with a "content" array.
func Items[T any](raw json.RawMessage) ([]T, error) {
	p, err := PageOf[T](raw)
	if err != nil {
		return nil, err
	}
	return p.Items, nil
}

// PageOf decodes a list endpoint's payload into a Page. A raw array is
// treated as a single full page.
func PageOf[T any](raw json.RawMessage) (Page[T], error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return Page[T]{}, fmt.Errorf("empty response body")
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, fmt.Errorf("decode list: %w", err)
		}
		return Page[T]{
			Items:         items,
			TotalElements: int64(len(items)),
			TotalPages:    1,
			Size:          len(items),
		}, nil
	}

	var env pageEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Page[T]{}, fmt.Errorf("decode page envelope: %w", err)
	}
	if env.Content == nil {
		return Page[T]{}, fmt.Errorf("response is neither an array nor a page envelope")
	}

	var items []T
	if err := json.Unmarshal(env.Content, &items); err != nil {
		return Page[T]{}, fmt.Errorf("decode page content: %w", err)
	}
	return Page[T]{
		Items:         items,
		TotalElements: env.TotalElements,
		TotalPages:    env.TotalPages,
		Number:        env.Number,
		Size:          env.Size,
	}, nil
}
