package config

import (
	"fmt"
	"strings"
)

// ParseKeyValue parses a single key=value pair and returns the key and value.
// If no value is provided, the value will be empty.
func ParseKeyValue(input string) (key, val string) {
	key, val, _ = strings.Cut(input, "=")
	return key, val
}

// ParseKeyValuePairs parses a comma-separated string of key=value pairs
// and returns them as a map. Empty pairs are ignored, and whitespace
// around pairs is trimmed.
func ParseKeyValuePairs(input string) map[string]string {
	result := make(map[string]string)
	for _, pair := range strings.Split(input, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, val := ParseKeyValue(pair)
		if key != "" {
			result[key] = val
		}
	}
	return result
}

// resourceKeys turns "requests.cpu=250m,limits.memory=2Gi" into configuration keys.
func resourceKeys(input string) (map[string]string, error) {
	keys := map[string]string{}
	for k, v := range ParseKeyValuePairs(input) {
		kind, name, ok := strings.Cut(k, ".")
		if !ok || name == "" || (kind != "requests" && kind != "limits") {
			return nil, fmt.Errorf("invalid resource %q: expected requests.<name> or limits.<name>", k)
		}
		keys["integration.default_resources."+kind+"."+name] = v
	}
	return keys, nil
}
