package atp

import "strings"

/*
ExtractText pulls the agent-visible answer out of a task snapshot.

Artifacts are the preferred source: every text part across every artifact
is concatenated in order, newline separated, so multi-artifact answers
arrive as one block. Only when the artifacts hold no text does the history
get scanned, newest first, for the latest agent message, and then only
that message's first text part is returned. The asymmetry is deliberate:
artifacts are the agent's curated output, history is a fallback trace.

A task with no text anywhere yields the empty string.
*/
func ExtractText(task *Task) string {
	if task == nil {
		return ""
	}

	var texts []string

	for _, artifact := range task.Artifacts {
		for _, part := range artifact.Parts {
			if part.IsText() && part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
	}

	if len(texts) > 0 {
		return strings.Join(texts, "\n")
	}

	for i := len(task.History) - 1; i >= 0; i-- {
		message := task.History[i]

		if !IsAgentRole(message.Role) {
			continue
		}

		if text, ok := message.FirstText(); ok {
			return text
		}
	}

	return ""
}
