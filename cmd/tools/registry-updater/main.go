// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hr-assistant/pkg/registry"
)

var (
	registryPath string

	rootCmd = &cobra.Command{
		Use:   "registry-updater",
		Short: "Maintains the HR assistant tool catalog",
		Long: `Edits the JSON tool catalog read by the tool server and the tool path.
Every write is validated: names must be unique and input schemas must compile.`,
		SilenceUsage: true,
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Print the catalog as it is shown to the language model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reg.Describe())
			return nil
		},
	}

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d tools.\n", len(reg.Tools))
			return nil
		},
	}

	addCmd = &cobra.Command{
		Use:   "add",
		Short: "Add a tool to the registry",
		Example: `  registry-updater add --name get_user --display-name "Get User" \
    --description "Fetch one employee record." --arguments user_id,username \
    --schema '{"type":"object","properties":{"user_id":{"type":"string"},"username":{"type":"string"}}}'`,
		RunE: runAdd,
	}

	updateCmd = &cobra.Command{
		Use:     "update",
		Short:   "Update a field of an existing tool",
		Example: `  registry-updater update --name add_user --field description --value "Create an employee."`,
		RunE:    runUpdate,
	}

	addOpts struct {
		name, displayName, description, schema string
		arguments, tags                        []string
		mutating                               bool
	}
	updateOpts struct {
		name, field, value string
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "path", "configs/tool-registry.json", "Path to registry file")

	addCmd.Flags().StringVar(&addOpts.name, "name", "", "Tool name (e.g. add_user)")
	addCmd.Flags().StringVar(&addOpts.displayName, "display-name", "", "Display name")
	addCmd.Flags().StringVar(&addOpts.description, "description", "", "Description shown to the language model")
	addCmd.Flags().StringVar(&addOpts.schema, "schema", "", "Input JSON schema, inline or @file")
	addCmd.Flags().StringSliceVar(&addOpts.arguments, "arguments", nil, "Argument names in prompt order")
	addCmd.Flags().StringSliceVar(&addOpts.tags, "tags", nil, "Tags")
	addCmd.Flags().BoolVar(&addOpts.mutating, "mutating", false, "Tool changes the user store")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("description")
	_ = addCmd.MarkFlagRequired("schema")

	updateCmd.Flags().StringVar(&updateOpts.name, "name", "", "Tool name to update")
	updateCmd.Flags().StringVar(&updateOpts.field, "field", "", "Field to update (displayName, description, mutating, arguments, tags, version)")
	updateCmd.Flags().StringVar(&updateOpts.value, "value", "", "New value for the field")
	_ = updateCmd.MarkFlagRequired("name")
	_ = updateCmd.MarkFlagRequired("field")

	rootCmd.AddCommand(listCmd, validateCmd, addCmd, updateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAdd(cmd *cobra.Command, _ []string) error {
	schema, err := readSchema(addOpts.schema)
	if err != nil {
		return err
	}
	tool := registry.ToolDefinition{
		Name:        addOpts.name,
		DisplayName: addOpts.displayName,
		Description: addOpts.description,
		Mutating:    addOpts.mutating,
		Arguments:   addOpts.arguments,
		InputSchema: schema,
		Tags:        addOpts.tags,
	}
	if err := addTool(registryPath, tool); err != nil {
		return fmt.Errorf("error adding tool: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added tool: %s\n", tool.Name)
	return nil
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	if err := updateTool(registryPath, updateOpts.name, updateOpts.field, updateOpts.value); err != nil {
		return fmt.Errorf("error updating tool: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated tool %s, field %s to %s\n", updateOpts.name, updateOpts.field, updateOpts.value)
	return nil
}

func readSchema(value string) (map[string]interface{}, error) {
	data := []byte(value)
	if strings.HasPrefix(value, "@") {
		var err error
		if data, err = os.ReadFile(strings.TrimPrefix(value, "@")); err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return schema, nil
}

func addTool(path string, tool registry.ToolDefinition) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ToolRegistry{Version: "1.0.0"}
	}

	if _, exists := reg.Lookup(tool.Name); exists {
		return fmt.Errorf("tool %s already exists", tool.Name)
	}
	reg.Tools = append(reg.Tools, tool)
	return saveRegistry(reg, path)
}

func updateTool(path, name, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if field == "version" {
		reg.Version = value
		return saveRegistry(reg, path)
	}

	tool, ok := reg.Lookup(name)
	if !ok {
		return fmt.Errorf("tool %s not found", name)
	}

	switch field {
	case "displayName":
		tool.DisplayName = value
	case "description":
		tool.Description = value
	case "mutating":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid mutating value: %w", err)
		}
		tool.Mutating = b
	case "arguments":
		tool.Arguments = splitList(value)
	case "tags":
		tool.Tags = splitList(value)
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	return saveRegistry(reg, path)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// saveRegistry validates and writes the registry
func saveRegistry(reg *registry.ToolRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	if err := reg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
