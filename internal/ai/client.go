package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hray3182/daybook/internal/recurrence"
)

type Client struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		now:    time.Now,
	}
}

// Suggestion is the model's reading of a recurrence description.
type Suggestion struct {
	Rule        string `json:"rule"`
	Explanation string `json:"explanation"`
}

const rulePromptTemplate = `You convert descriptions of repeating schedules into a compact rule encoding.

Current date: %s

The encoding has exactly three forms:
- DAILY:                                  every day
- WEEKLY:<days>                           every listed weekday
- MONTHLY:<n>:<days>                      the n-th listed weekday of each month (n starts at 1)

<days> is a comma-separated list of full English weekday names in upper case,
for example MONDAY,WEDNESDAY,FRIDAY.

Examples:
- "every day" -> DAILY:
- "mondays and thursdays" -> WEEKLY:MONDAY,THURSDAY
- "second tuesday of every month" -> MONTHLY:2:TUESDAY
- "first saturday and sunday monthly" -> MONTHLY:1:SATURDAY,SUNDAY

If the description cannot be expressed in this encoding, return an empty rule and say why in explanation.`

var suggestionSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"rule": {
			"type": "string",
			"description": "The rule encoding, or an empty string when the description does not fit"
		},
		"explanation": {
			"type": "string",
			"description": "One short sentence about the interpretation"
		}
	},
	"required": ["rule", "explanation"],
	"additionalProperties": false
}`)

// SuggestRule asks the model for a rule encoding matching text. The answer is
// parsed before it is returned, so the rule is always canonical and valid.
func (c *Client) SuggestRule(ctx context.Context, text string) (string, *Suggestion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(rulePromptTemplate, c.now().Format("2006-01-02 (Monday)")),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "recurrence_rule",
				Schema: suggestionSchema,
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("no response from AI")
	}

	suggestion := &Suggestion{}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), suggestion); err != nil {
		return "", nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	rule, err := recurrence.Parse(suggestion.Rule)
	if err != nil {
		return "", suggestion, err
	}
	return rule.String(), suggestion, nil
}
