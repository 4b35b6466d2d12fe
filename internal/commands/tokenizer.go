// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
)

// =============================================================================
// TOKENIZER
// =============================================================================

// Tokenize splits a command line into tokens, respecting quotes.
//
// Both ' and " flip the same "inside quotes" flag; the opening character is
// not remembered, so in `'a" b` the " closes the span and b is a new token. Quote characters are consumed and
// never copied into the token. An unmatched quote makes the rest of the line
// a single quoted span. Empty tokens are never emitted.
func Tokenize(line string) []string {
	tokens := []string{}
	var current strings.Builder
	inQuotes := false

	for _, char := range line {
		switch {
		case char == '"' || char == '\'':
			inQuotes = !inQuotes

		case unicode.IsSpace(char) && !inQuotes:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// ExtractCommandName returns the lowercased first token of a line, or "".
func ExtractCommandName(line string) string {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return ""
	}
	return foldName(tokens[0])
}
