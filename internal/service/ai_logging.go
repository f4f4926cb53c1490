package service

import (
	"log"
	"strings"
	"unicode/utf8"
)

const maxAILogSnippetRunes = 300

// logAIExchange 输出文本生成接口的提示词与返回，换行压成一行，过长时截断。
func logAIExchange(kind, phase, content string) {
	flat := strings.Join(strings.Fields(content), " ")
	if flat == "" {
		log.Printf("[AI %s] %s: <empty>", kind, phase)
		return
	}

	runeCount := utf8.RuneCountInString(flat)
	if runeCount > maxAILogSnippetRunes {
		flat = string([]rune(flat)[:maxAILogSnippetRunes]) + "…(truncated)"
	}
	log.Printf("[AI %s] %s (runes=%d): %s", kind, phase, runeCount, flat)
}
