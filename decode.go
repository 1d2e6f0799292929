package fluent

// decodePayload interprets a raw payload according to the target shape
// T. hasBody=false means the transport reported no payload at all, which
// is distinct from a zero-length payload.
//
// Dispatch order, first match wins: absent payload, None, raw bytes,
// text, structured. Zero-length payloads yield absence for every shape
// except raw bytes, so the structured-data collaborator never sees an
// empty document.
func decodePayload[T any](unmarshal func([]byte, any) error, payload []byte, hasBody bool) (T, bool, error) {
	var v T
	if !hasBody {
		return v, false, nil
	}
	switch out := any(&v).(type) {
	case *None:
		return v, false, nil
	case *[]byte:
		*out = payload
		return v, true, nil
	case *string:
		if len(payload) == 0 {
			return v, false, nil
		}
		*out = string(payload)
		return v, true, nil
	default:
		if len(payload) == 0 {
			return v, false, nil
		}
		if err := unmarshal(payload, &v); err != nil {
			return v, false, &MappingError{Err: err}
		}
		return v, true, nil
	}
}
