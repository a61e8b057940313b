package models

// Payload is a decoded JSON document from a bureau API endpoint. The bureau
// wraps every response in {"data": ..., "metadata": ...}; the shapes under
// "data" vary by endpoint and firmware-style API revisions, so payloads stay
// dynamic and the collector normalizes them in place.
type Payload map[string]interface{}

// Data returns the "data" member as an object, or nil when absent or not an
// object (the warnings endpoint returns "data" as an array).
func (p Payload) Data() map[string]interface{} {
	if p == nil {
		return nil
	}
	d, _ := p["data"].(map[string]interface{})
	return d
}

// DataList returns the "data" member as a list of objects (daily and hourly
// forecasts). Returns nil when absent or shaped differently.
func (p Payload) DataList() []interface{} {
	if p == nil {
		return nil
	}
	l, _ := p["data"].([]interface{})
	return l
}

// Clone returns a deep copy of the payload. The collector normalizes
// payloads in place, so the last-known-good cache keeps (and hands out) its
// own copies to stay pristine across repeated stale serves.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	return Payload(cloneMap(p))
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Number extracts a numeric field from a JSON object. Decoded JSON numbers
// are float64; plain ints are accepted for hand-built payloads. Anything else
// (null, string, missing) reports false.
func Number(m map[string]interface{}, key string) (float64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
