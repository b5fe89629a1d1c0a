package models

import (
	"encoding/json"
)

// marshalWithExtra encodes base and merges the extra fields into the same
// JSON object. Declared fields always win over extra keys with the same name.
func marshalWithExtra(base interface{}, extra map[string]interface{}) ([]byte, error) {
	data, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, declared := fields[k]; declared {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		fields[k] = raw
	}
	return json.Marshal(fields)
}

// extraFields returns every key of the JSON object in data that is not one of
// the declared keys, or nil when there are none.
func extraFields(data []byte, declared ...string) (map[string]interface{}, error) {
	var all map[string]interface{}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range declared {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
