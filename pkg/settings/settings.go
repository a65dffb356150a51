package settings

import (
	"encoding/json"
	"maps"
)

// Document is the settings record: nested JSON objects addressed by dotted paths.
type Document map[string]any

// Defaults is the record a fresh dashboard starts with.
func Defaults() Document {
	return Document{
		"theme":    "light",
		"language": "pt-BR",
		"notifications": map[string]any{
			"budget": true,
			"notes":  true,
			"sync":   true,
		},
		"privacy": map[string]any{
			"shareData": false,
			"analytics": false,
		},
		"sync": map[string]any{
			"autoSync":     true,
			"syncInterval": float64(300000),
		},
		"display": map[string]any{
			"currency":   "BRL",
			"dateFormat": "DD/MM/YYYY",
			"timeFormat": "24h",
		},
		"backup": map[string]any{
			"autoBackup":     false,
			"backupInterval": float64(86400000),
		},
	}
}

// merge lays stored over base, recursing into objects both sides have.
func merge(base, stored map[string]any) map[string]any {
	out := maps.Clone(base)
	for k, v := range stored {
		bv, ok := out[k].(map[string]any)
		sv, isObj := v.(map[string]any)
		if ok && isObj {
			out[k] = merge(bv, sv)
			continue
		}
		out[k] = v
	}
	return out
}

// clone deep-copies d through JSON so callers cannot mutate shared defaults.
func (d Document) clone() Document {
	data, err := json.Marshal(d)
	if err != nil {
		return Document{}
	}
	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return Document{}
	}
	return out
}
