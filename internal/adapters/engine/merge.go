package engine

import (
	"dario.cat/mergo"

	"github.com/fragent/fragent/internal/domain"
)

// MergeInputs folds the given result maps into a single input map. Maps are
// applied in order and later maps override earlier ones on key collision,
// recursively for nested maps. The sources are never mutated.
func MergeInputs(results ...map[string]interface{}) (map[string]interface{}, error) {
	merged := make(map[string]interface{})

	for _, result := range results {
		if result == nil {
			continue
		}
		overlay := deepCopyMap(result)
		if err := mergo.Merge(&merged, overlay, mergo.WithOverride); err != nil {
			return nil, domain.Error{
				Type:    domain.ErrorTypeInternal,
				Message: "failed to merge component inputs",
				Details: map[string]interface{}{"error": err.Error()},
			}
		}
	}

	return merged, nil
}

// deepCopyMap isolates the merge from its sources. Mergo merges nested maps
// in place, so without the copy a later merge would reach back into an
// earlier component's recorded result.
func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(typed)
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, item := range typed {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
