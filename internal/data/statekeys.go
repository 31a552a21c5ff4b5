// Package data holds static tables loaded at startup.
package data

import (
	"fmt"
	"os"

	"github.com/ghack/client/internal/protocol"
	"gopkg.in/yaml.v3"
)

// Well-known state keys the HUD reads.
const (
	KeyHealth    = "Health"
	KeyMaxHealth = "MaxHealth"
	KeyKillCount = "KillCount"
	KeyPosition  = "Position"
	KeyAsset     = "Asset"
	KeyName      = "Name"
)

// StateKey describes one server state key: its value kind and the label the
// presentation layer shows for it.
type StateKey struct {
	Key   string `yaml:"key"`
	Kind  string `yaml:"kind"` // "int", "string" or "vector"
	Label string `yaml:"label"`
}

// StateKeyTable maps server state keys to their declared kinds.
type StateKeyTable struct {
	byKey map[string]StateKey
}

type stateKeyFile struct {
	Keys []StateKey `yaml:"state_keys"`
}

// LoadStateKeys reads a state-key table from a YAML file.
func LoadStateKeys(path string) (*StateKeyTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state keys %s: %w", path, err)
	}
	var file stateKeyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse state keys %s: %w", path, err)
	}
	t := &StateKeyTable{byKey: make(map[string]StateKey, len(file.Keys))}
	for _, k := range file.Keys {
		if k.Key == "" {
			return nil, fmt.Errorf("parse state keys %s: entry with empty key", path)
		}
		t.byKey[k.Key] = k
	}
	return t, nil
}

// BuiltinStateKeys returns the table of keys the stock server sends, used
// when no YAML table is configured.
func BuiltinStateKeys() *StateKeyTable {
	keys := []StateKey{
		{Key: KeyHealth, Kind: "int", Label: "Health"},
		{Key: KeyMaxHealth, Kind: "int", Label: "Max Health"},
		{Key: KeyKillCount, Kind: "int", Label: "Kills"},
		{Key: KeyPosition, Kind: "vector", Label: "Position"},
		{Key: KeyAsset, Kind: "string", Label: "Asset"},
		{Key: KeyName, Kind: "string", Label: "Name"},
	}
	t := &StateKeyTable{byKey: make(map[string]StateKey, len(keys))}
	for _, k := range keys {
		t.byKey[k.Key] = k
	}
	return t
}

// Lookup returns the entry for key.
func (t *StateKeyTable) Lookup(key string) (StateKey, bool) {
	k, ok := t.byKey[key]
	return k, ok
}

// Count returns the number of known keys.
func (t *StateKeyTable) Count() int {
	return len(t.byKey)
}

// Validate reports whether a state value matches the declared kind for its
// key. Unknown keys pass: servers may send keys this build has no table
// entry for.
func (t *StateKeyTable) Validate(key string, v protocol.StateValue) bool {
	k, ok := t.byKey[key]
	if !ok {
		return true
	}
	switch k.Kind {
	case "int":
		return v.Kind == protocol.ValueInt
	case "string":
		return v.Kind == protocol.ValueString
	case "vector":
		return v.Kind == protocol.ValueVector
	default:
		return true
	}
}
