// internal/toolserver/args.go
package toolserver

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"hr-assistant/pkg/registry"
)

// decodeArgs parses raw tool arguments and coerces values to the types the
// catalog declares: numeric strings and whole floats become ints for integer
// properties, numbers become strings for string properties.
func decodeArgs(def *registry.ToolDefinition, raw json.RawMessage) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("%w: %v", registry.ErrInvalidArguments, err)
		}
	}

	for k, v := range args {
		switch def.PropertyType(k) {
		case "integer":
			args[k] = coerceInt(v)
		case "string":
			args[k] = coerceString(v)
		}
	}
	return args, nil
}

func coerceInt(v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) {
			return int(x)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n
		}
	}
	return v
}

func coerceString(v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return strings.TrimSpace(x)
	}
	return v
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]interface{}, key string, def int) int {
	if n, ok := args[key].(int); ok {
		return n
	}
	return def
}
