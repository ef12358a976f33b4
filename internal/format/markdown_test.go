package format

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestParseMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		text     string
		entities []tgbotapi.MessageEntity
	}{
		{
			name:  "plain",
			input: "no markup here",
			text:  "no markup here",
		},
		{
			name:  "double star bold",
			input: "**June 2025** summary",
			text:  "June 2025 summary",
			entities: []tgbotapi.MessageEntity{
				{Type: "bold", Offset: 0, Length: 9},
			},
		},
		{
			name:  "single star bold and code",
			input: "rule *Weekly*: `WEEKLY:MONDAY`",
			text:  "rule Weekly: WEEKLY:MONDAY",
			entities: []tgbotapi.MessageEntity{
				{Type: "bold", Offset: 5, Length: 6},
				{Type: "code", Offset: 13, Length: 13},
			},
		},
		{
			name:  "pre block trims surrounding newlines",
			input: "grid\n```\nMo Tu\n 1*\n```",
			text:  "grid\nMo Tu\n 1*",
			entities: []tgbotapi.MessageEntity{
				{Type: "pre", Offset: 5, Length: 9},
			},
		},
		{
			name:  "offsets count utf16 units",
			input: "📅 **Dates**",
			text:  "📅 Dates",
			entities: []tgbotapi.MessageEntity{
				{Type: "bold", Offset: 3, Length: 5},
			},
		},
		{
			name:  "unclosed marker is literal",
			input: "5 * 3 = 15",
			text:  "5 * 3 = 15",
		},
		{
			name:  "empty pair is dropped",
			input: "a ** b",
			text:  "a ** b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMarkdown(tt.input)
			assert.Equal(t, tt.text, got.Text)
			assert.Equal(t, tt.entities, got.Entities)
		})
	}
}

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 0, UTF16Len(""))
	assert.Equal(t, 5, UTF16Len("Dates"))
	assert.Equal(t, 2, UTF16Len("📅"))
	assert.Equal(t, 2, UTF16Len("日曆"))
}
