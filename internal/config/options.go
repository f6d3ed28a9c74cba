package config

// Options is a loosely-typed option bag handed to the ingestion layer.
// Typed accessors return the given default when a key is absent or holds a
// value of the wrong type; option handling never fails mid-stream.
type Options map[string]any

// Bool returns the boolean at key, or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

// String returns the string at key, or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Int returns the integer at key, or def. Accepts int and int64 values
// since decoded config may carry either.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return def
}

// Rune returns the first rune of the string at key, or def. Used for
// single-character options such as the CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key].(string); ok {
		for _, r := range v {
			return r
		}
	}
	if v, ok := o[key].(rune); ok {
		return v
	}
	return def
}

// StringMap returns the map[string]string at key, or nil.
func (o Options) StringMap(key string) map[string]string {
	switch v := o[key].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}
