package memstore

import (
	"time"

	"luxe/internal/domain/repository"
)

// resolve merges update into a copy of base, replacing write transforms with
// concrete values the way a server would at commit time.
func resolve(base, update repository.Fields, now time.Time) repository.Fields {
	out := copyFields(base)
	if out == nil {
		out = make(repository.Fields, len(update))
	}

	for key, value := range update {
		switch v := value.(type) {
		case repository.Increment:
			out[key] = increment(out[key], v.Delta)
		default:
			if repository.IsServerTimestamp(v) {
				out[key] = now
			} else {
				out[key] = normalize(v)
			}
		}
	}

	return out
}

// increment adds delta to current. A missing or non-numeric field is treated as zero.
func increment(current any, delta int64) any {
	switch v := current.(type) {
	case int64:
		return v + delta
	case float64:
		return v + float64(delta)
	default:
		return delta
	}
}

// normalize deep-copies v and widens numbers to int64 and float64, the only
// numeric types a document store hands back.
func normalize(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case uint32:
		return int64(t)
	case float32:
		return float64(t)
	case repository.Fields:
		return map[string]any(copyFields(t))
	case map[string]any:
		return map[string]any(copyFields(t))
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = map[string]any(copyFields(m))
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}

		return out
	default:
		return v
	}
}

func copyFields(fields map[string]any) repository.Fields {
	if fields == nil {
		return nil
	}

	out := make(repository.Fields, len(fields))
	for key, value := range fields {
		out[key] = normalize(value)
	}

	return out
}
