// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrToolNotFound     = errors.New("UNKNOWN_TOOL")
	ErrInvalidArguments = errors.New("INVALID_TOOL_ARGUMENTS")
)

//go:embed tools.json
var defaultCatalog []byte

// Default returns the built-in tool catalog.
func Default() *ToolRegistry {
	reg, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("registry: built-in catalog is invalid: %v", err))
	}
	return reg
}

func LoadRegistry(path string) (*ToolRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadOrDefault reads path, falling back to the built-in catalog when the
// file does not exist.
func LoadOrDefault(path string) (*ToolRegistry, error) {
	if path == "" {
		return Default(), nil
	}
	reg, err := LoadRegistry(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return reg, err
}

func Parse(data []byte) (*ToolRegistry, error) {
	var reg ToolRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks names are unique and every input schema compiles.
func (r *ToolRegistry) Validate() error {
	if len(r.Tools) == 0 {
		return fmt.Errorf("registry contains no tools")
	}

	seen := make(map[string]bool, len(r.Tools))
	for _, tool := range r.Tools {
		if tool.Name == "" {
			return fmt.Errorf("tool missing required field: name")
		}
		if seen[tool.Name] {
			return fmt.Errorf("duplicate tool name: %s", tool.Name)
		}
		seen[tool.Name] = true

		if tool.InputSchema == nil {
			return fmt.Errorf("tool %s missing required field: inputSchema", tool.Name)
		}
		if typ, _ := tool.InputSchema["type"].(string); typ != "object" {
			return fmt.Errorf("tool %s: inputSchema type must be object", tool.Name)
		}
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tool.InputSchema)); err != nil {
			return fmt.Errorf("tool %s: invalid inputSchema: %w", tool.Name, err)
		}
		for _, arg := range tool.Arguments {
			if tool.PropertyType(arg) == "" {
				return fmt.Errorf("tool %s: argument %s not declared in inputSchema", tool.Name, arg)
			}
		}
	}
	return nil
}

func (r *ToolRegistry) Lookup(name string) (*ToolDefinition, bool) {
	for i := range r.Tools {
		if r.Tools[i].Name == name {
			return &r.Tools[i], true
		}
	}
	return nil, false
}

func (r *ToolRegistry) Names() []string {
	names := make([]string, len(r.Tools))
	for i, t := range r.Tools {
		names[i] = t.Name
	}
	return names
}

// ValidateArguments checks args against the tool's input schema.
func (r *ToolRegistry) ValidateArguments(name string, args map[string]interface{}) error {
	tool, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(tool.InputSchema),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(msgs, "; "))
	}
	return nil
}

// Describe renders the catalog as prompt lines: "- name(arg1, arg2): description".
func (r *ToolRegistry) Describe() string {
	var b strings.Builder
	for i, t := range r.Tools {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s(%s): %s", t.Name, strings.Join(t.Arguments, ", "), t.Description)
	}
	return b.String()
}
