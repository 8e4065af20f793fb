// Package canonical produces order-insensitive content digests.
package canonical

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Canonicalize converts v into generic JSON values with a deterministic
// shape. Object keys are ordered by the encoder; arrays whose elements are all
// objects carrying a non-empty "id" are sorted by that id, and elements sharing
// an id are ordered by their own canonical encoding. Any other array keeps its
// order.
func Canonicalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return normalize(generic), nil
}

// Digest returns the hex MD5 of the canonical JSON encoding of v.
func Digest(v any) (string, error) {
	c, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = normalize(child)
		}
		keys, ok := idKeys(t)
		if !ok {
			return t
		}
		order := make([]int, len(t))
		for i := range order {
			order[i] = i
		}
		var encoded []string
		sort.SliceStable(order, func(a, b int) bool {
			ka, kb := keys[order[a]], keys[order[b]]
			if ka != kb {
				return ka < kb
			}
			if encoded == nil {
				encoded = encodeAll(t)
			}
			return encoded[order[a]] < encoded[order[b]]
		})
		sorted := make([]any, len(t))
		for i, idx := range order {
			sorted[i] = t[idx]
		}
		return sorted
	default:
		return v
	}
}

// encodeAll returns the JSON encoding of each already normalized element.
// Map keys encode sorted, so equal values always encode identically.
func encodeAll(items []any) []string {
	out := make([]string, len(items))
	for i, item := range items {
		data, _ := json.Marshal(item)
		out[i] = string(data)
	}
	return out
}

// idKeys returns the sort key of every element, or false when any element is
// not an object with a non-empty id.
func idKeys(items []any) ([]string, bool) {
	if len(items) == 0 {
		return nil, false
	}
	keys := make([]string, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		id, ok := obj["id"]
		if !ok || id == nil {
			return nil, false
		}
		key := fmt.Sprint(id)
		if key == "" {
			return nil, false
		}
		keys[i] = key
	}
	return keys, true
}
