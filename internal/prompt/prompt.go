// Package prompt composes the text block sent to completion-style providers.
package prompt

import "strings"

// Parts holds the inputs of a prompt. Question is required; empty optional
// fields are omitted from the output entirely.
type Parts struct {
	Question     string
	Context      string
	Topic        string
	SystemPrompt string
}

// Build joins the non-empty parts with blank lines, in a fixed order, and
// appends the closing instruction.
func Build(p Parts) string {
	pieces := make([]string, 0, 5)
	if p.SystemPrompt != "" {
		pieces = append(pieces, p.SystemPrompt)
	}
	if p.Topic != "" {
		pieces = append(pieces, "Topic: "+p.Topic)
	}
	if p.Context != "" {
		pieces = append(pieces, "Context: "+p.Context)
	}
	pieces = append(pieces, "Question: "+p.Question)
	pieces = append(pieces, "Answer succinctly.")
	return strings.Join(pieces, "\n\n")
}
