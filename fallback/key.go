package fallback

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Key builds a deterministic store key from a tool name and its input.
// Format: fallback:<tool>:<hash>, where hash is the first 16 hex chars
// of SHA-256 over a canonical JSON rendering of the input. Maps are
// serialized with sorted keys so iteration order never changes the key.
// The generated key is validated, so a tool name a Store would reject
// fails here instead of results silently never being recorded.
func Key(tool string, input any) (string, error) {
	canonical, err := canonicalize(input)
	if err != nil {
		return "", fmt.Errorf("fallback: canonicalize input: %w", err)
	}

	hash := sha256.Sum256(canonical)
	key := fmt.Sprintf("fallback:%s:%s", tool, hex.EncodeToString(hash[:8]))
	if err := ValidateKey(key); err != nil {
		return "", fmt.Errorf("fallback: tool %q: %w", tool, err)
	}
	return key, nil
}

func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, ']'), nil
}
