// internal/workers/hr-assistant/invoke-tool/extractor.go
package invoketool

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"hr-assistant/internal/models"
)

var (
	fencePattern   = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*\\s*(.*?)\\s*```$")
	callPattern    = regexp.MustCompile(`(?s)^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\((.*)\)\s*$`)
	kwargPattern   = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*=\s*("[^"]*"|'[^']*'|[^,]*)`)
	integerPattern = regexp.MustCompile(`^[+-]?\d+$`)
)

// Extract turns model output into an ActionRequest. It returns nil for
// anything that is not, after normalisation, a call_tool record naming a
// known tool. Three legacy shapes are normalised:
//
//	{"action": "<tool>", "args": {...}}
//	{"action": "<tool>(k=v, k2=v2)"}
//	{"tool": "<tool>", "args": {...}}
func Extract(raw string) *models.ActionRequest {
	obj, ok := decodeObject(stripCodeFence(raw))
	if !ok {
		return nil
	}

	action, hasAction := obj["action"].(string)
	switch {
	case hasAction && action == models.ActionCallTool:
	case hasAction && models.IsToolName(action):
		obj["tool"] = action
		obj["action"] = models.ActionCallTool
	case hasAction:
		name, args, ok := parseCallSyntax(action)
		if !ok {
			return nil
		}
		obj["tool"] = name
		obj["args"] = args
		obj["action"] = models.ActionCallTool
	default:
		_, hasTool := obj["tool"]
		_, hasArgs := obj["args"]
		if _, present := obj["action"]; present || !hasTool || !hasArgs {
			return nil
		}
		obj["action"] = models.ActionCallTool
	}

	if obj["action"] != models.ActionCallTool {
		return nil
	}
	tool, _ := obj["tool"].(string)
	if !models.IsToolName(tool) {
		return nil
	}
	args, ok := scalarArgs(obj["args"])
	if !ok {
		return nil
	}
	return &models.ActionRequest{Tool: tool, Args: args}
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

func decodeObject(text string) (map[string]interface{}, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return obj, true
}

// parseCallSyntax parses name(k=v, k2=v2). Integer-looking values become
// ints; everything else stays a string with surrounding quotes removed.
// Positional arguments cannot be mapped to names, so a call made only of
// them is rejected.
func parseCallSyntax(s string) (string, map[string]interface{}, bool) {
	m := callPattern.FindStringSubmatch(s)
	if m == nil {
		return "", nil, false
	}

	args := make(map[string]interface{})
	for _, kv := range kwargPattern.FindAllStringSubmatch(m[2], -1) {
		args[kv[1]] = coerceLiteral(kv[2])
	}
	if len(args) == 0 && strings.TrimSpace(m[2]) != "" {
		return "", nil, false
	}
	return m[1], args, true
}

func coerceLiteral(v string) interface{} {
	v = strings.TrimSpace(v)
	if integerPattern.MatchString(v) {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// scalarArgs accepts a missing or null args value as empty and rejects
// nested objects or arrays.
func scalarArgs(v interface{}) (map[string]interface{}, bool) {
	if v == nil {
		return map[string]interface{}{}, true
	}
	in, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}

	out := make(map[string]interface{}, len(in))
	for k, val := range in {
		switch x := val.(type) {
		case json.Number:
			if n, err := x.Int64(); err == nil {
				out[k] = int(n)
			} else if f, err := x.Float64(); err == nil {
				out[k] = f
			} else {
				out[k] = x.String()
			}
		case string, bool, int, float64, nil:
			out[k] = x
		default:
			return nil, false
		}
	}
	return out, true
}
