// internal/workers/hr-assistant/classify-intent/generative.go
package classifyintent

import (
	"context"
	"fmt"
	"strings"

	"hr-assistant/internal/common/llm"
	"hr-assistant/internal/models"
)

const classificationPrompt = `You are an intent classifier for an HR assistant that can use database tools.
Your job is to decide what the user wants to do, and return ONE label.

Choose one of these intents:
%s

### Rules
- If the user asks to *add, create, register, or onboard* an employee → add_user
- If the user wants to *update or modify leave balance* → update_leave_balance
- If the user asks to *remove, terminate, or delete* a user → delete_user
- If the user asks to *see, list, or show* users → list_users
- If the user asks to *get or fetch* info for a specific employee → get_user
- If the user asks about *remaining leaves, total leaves* → leave_balance
- If the user asks about *HR policies* like maternity, notice period, holidays, etc. → policy_query
- If the user greets, thanks, or makes small talk → general

### Examples
"Add new user John" → add_user
"How many leaves do I have?" → leave_balance
"Show me all users" → list_users
"Delete employee Mary" → delete_user
"Update leave for John to 12" → update_leave_balance
"What is the maternity policy?" → policy_query
"Hello there" → general

Now, classify this user query:
"%s"

Respond with ONLY one word:
add_user, update_leave_balance, delete_user, list_users, get_user, leave_balance, policy_query, or general.
No punctuation. No explanation.`

// GenerativeClassifier asks the language model to name the intent. It never
// abstains: any failure yields general.
type GenerativeClassifier struct {
	completer llm.Completer
	logger    Logger
}

func NewGenerativeClassifier(completer llm.Completer, log Logger) *GenerativeClassifier {
	return &GenerativeClassifier{completer: completer, logger: log}
}

func (g *GenerativeClassifier) ClassifyByGeneration(ctx context.Context, query string) models.IntentLabel {
	text, err := g.completer.Complete(ctx, BuildClassificationPrompt(query))
	if err != nil {
		g.logger.Warn("generative classification failed, using general", map[string]interface{}{
			"error": err.Error(),
		})
		return models.IntentGeneral
	}
	return ParseLabel(text)
}

func BuildClassificationPrompt(query string) string {
	labels := make([]string, len(models.IntentLabels))
	for i, l := range models.IntentLabels {
		labels[i] = "- " + string(l)
	}
	return fmt.Sprintf(classificationPrompt, strings.Join(labels, "\n"), query)
}

// ParseLabel returns the first label, in priority order, that occurs in the
// lower-cased model output. Output naming no label maps to general.
func ParseLabel(text string) models.IntentLabel {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, l := range models.IntentLabels {
		if strings.Contains(lower, string(l)) {
			return l
		}
	}
	return models.IntentGeneral
}
