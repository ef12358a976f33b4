// Package format builds bot replies: light markup converted to Telegram
// message entities, and text month grids.
package format

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseResult is the text with markers stripped and the entities they
// described.
type ParseResult struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

// UTF16Len is the length Telegram uses for entity offsets.
func UTF16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

var markers = []struct {
	open   string
	entity string
}{
	{"```", "pre"},
	{"**", "bold"},
	{"`", "code"},
	{"*", "bold"},
}

// ParseMarkdown understands ```pre```, `code`, **bold** and *bold*. Markers
// do not nest; an unclosed marker is kept as literal text.
func ParseMarkdown(text string) ParseResult {
	var (
		b        strings.Builder
		entities []tgbotapi.MessageEntity
		offset   int
	)

	for i := 0; i < len(text); {
		matched := false
		for _, m := range markers {
			if !strings.HasPrefix(text[i:], m.open) {
				continue
			}
			rest := text[i+len(m.open):]
			end := strings.Index(rest, m.open)
			if end <= 0 {
				continue
			}
			inner := rest[:end]
			if m.entity == "pre" {
				inner = strings.TrimSuffix(strings.TrimPrefix(inner, "\n"), "\n")
			}
			length := UTF16Len(inner)
			if length > 0 {
				entities = append(entities, tgbotapi.MessageEntity{
					Type:   m.entity,
					Offset: offset,
					Length: length,
				})
			}
			b.WriteString(inner)
			offset += length
			i += len(m.open) + end + len(m.open)
			matched = true
			break
		}
		if matched {
			continue
		}

		r, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		offset += len(utf16.Encode([]rune{r}))
		i += size
	}

	return ParseResult{Text: b.String(), Entities: entities}
}
