// pkg/registry/schema.go
package registry

type ToolRegistry struct {
	Version     string           `json:"version"`
	LastUpdated string           `json:"lastUpdated"`
	Tools       []ToolDefinition `json:"tools"`
}

type ToolDefinition struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	// Mutating tools change the user store and emit audit events.
	Mutating bool `json:"mutating"`
	// Arguments lists the schema properties in the order they are shown to
	// the language model.
	Arguments   []string               `json:"arguments"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Tags        []string               `json:"tags,omitempty"`
}

// PropertyType returns the JSON schema type of an argument, or "" if unknown.
func (t *ToolDefinition) PropertyType(arg string) string {
	props, _ := t.InputSchema["properties"].(map[string]interface{})
	prop, _ := props[arg].(map[string]interface{})
	typ, _ := prop["type"].(string)
	return typ
}
