package store

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// normalizeReply converts a go-redis reply into JSON-encodable values. A
// nil bulk reply becomes nil without error.
func normalizeReply(v interface{}, err error) (interface{}, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return normalizeValue(v), nil
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil, string, int64, float64, bool:
		return t
	case []byte:
		return string(t)
	case error:
		return t.Error()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalizeValue(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	default:
		return fmt.Sprint(t)
	}
}
