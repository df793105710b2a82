// internal/workers/hr-assistant/invoke-tool/prompts.go
package invoketool

import "fmt"

const toolPrompt = `You are an HR assistant that can manage employee records through tools.

Available tools:
%s

If the request below needs one of these tools, reply with ONLY a JSON object of this exact form:
{"action": "call_tool", "tool": "<name>", "args": {"<argument>": <value>}}

Use numbers for numeric arguments. Omit arguments the user did not give.
If no tool is needed, reply with plain text instead.

User request: %s`

const resultPrompt = `You are an HR assistant. The user asked: %s

The tool "%s" returned:
%s

Explain the outcome to the user in one or two sentences. Repeat the concrete data that was returned, such as ids, names and leave counts. Do not invent values.`

// BuildToolPrompt lists the catalog and asks for a call_tool object.
func BuildToolPrompt(query, catalog string) string {
	return fmt.Sprintf(toolPrompt, catalog, query)
}

func BuildResultPrompt(query, tool, result string) string {
	return fmt.Sprintf(resultPrompt, query, tool, result)
}
