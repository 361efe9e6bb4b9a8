package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/dslashgen/internal/ir"
)

// marshalConfig converts a configuration to canonical JSON TEXT for
// storage. Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalConfig(cfg ir.Object) (string, error) {
	if cfg == nil {
		cfg = ir.Object{}
	}
	data, err := ir.MarshalCanonical(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

// unmarshalConfig parses canonical JSON TEXT back into an ir.Object.
// Numbers are decoded through json.Number so integers keep full
// precision; fractional numbers are rejected like they are on write.
func unmarshalConfig(data string) (ir.Object, error) {
	if data == "" || data == "{}" {
		return ir.Object{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	v, err := toValue(raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return v.(ir.Object), nil
}

func toValue(x any) (ir.Value, error) {
	switch v := x.(type) {
	case string:
		return ir.Str(v), nil
	case bool:
		return ir.Bool(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("number %s is not an integer", v)
		}
		return ir.Int(n), nil
	case []any:
		list := make(ir.List, 0, len(v))
		for _, e := range v {
			ev, err := toValue(e)
			if err != nil {
				return nil, err
			}
			list = append(list, ev)
		}
		return list, nil
	case map[string]any:
		obj := make(ir.Object, len(v))
		for k, e := range v {
			ev, err := toValue(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			obj[k] = ev
		}
		return obj, nil
	case nil:
		return nil, fmt.Errorf("null is not a config value")
	}
	return nil, fmt.Errorf("unsupported JSON value %T", x)
}
