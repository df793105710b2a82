// internal/workers/hr-assistant/handle-query/prompts.go
package handlequery

import (
	"fmt"
	"strings"

	"hr-assistant/internal/models"
)

const leavePrompt = `The user asked: "%s"
HR Database:
- Name: %s
- Remaining Leaves: %d
- Total Leaves: %d

Write a friendly response explaining their leave balance.`

const policyPrompt = `You are a helpful HR assistant. Use the document snippets below to answer the question.
If no answer found, say "I don't see relevant policy text in the documents."

Context:
%s

Question: %s

Provide:
1) A concise answer (2-4 sentences)
2) Bullet list of sources (filenames)
3) If not found, say you didn't find it.`

const snippetSeparator = "\n\n---\n\n"

func BuildLeavePrompt(query string, user *models.UserRecord) string {
	return fmt.Sprintf(leavePrompt, query, user.Name, user.RemainingLeaves, user.TotalLeaves)
}

func BuildPolicyPrompt(query, context string) string {
	return fmt.Sprintf(policyPrompt, context, query)
}

// BuildPolicyContext tags each snippet with its source and joins them. Each
// snippet is flattened to one line and capped at maxPerDoc characters; no
// further snippets are added once the running total exceeds maxTotal.
func BuildPolicyContext(docs []models.PolicyDocument, maxPerDoc, maxTotal int) string {
	parts := make([]string, 0, len(docs))
	total := 0
	for _, d := range docs {
		snippet := []rune(strings.ReplaceAll(strings.TrimSpace(d.Content), "\n", " "))
		if maxPerDoc > 0 && len(snippet) > maxPerDoc {
			snippet = snippet[:maxPerDoc]
		}

		source := d.Source
		if source == "" {
			source = "unknown"
		}
		parts = append(parts, "Source: "+source+"\n"+string(snippet))

		total += len(snippet)
		if maxTotal > 0 && total > maxTotal {
			break
		}
	}
	return strings.Join(parts, snippetSeparator)
}
