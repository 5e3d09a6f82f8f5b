// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ReportError writes a diagnosed error to w:
//
//	Error: <outermost message>
//	  Caused by: <each wrapped cause>
//	Suggestion: <hint>
//
// Colors are used only when w is a terminal that supports them.
func ReportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	diagnosed := Diagnose(err)

	renderer := lipgloss.NewRenderer(w)
	errorStyle := renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	causeStyle := renderer.NewStyle().Faint(true)
	hintStyle := renderer.NewStyle().Foreground(lipgloss.Color("11"))

	messages := chain(diagnosed.Err)
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render("Error:"), messages[0])
	for _, cause := range messages[1:] {
		fmt.Fprintf(w, "  %s %s\n", causeStyle.Render("Caused by:"), cause)
	}
	if diagnosed.Hint != "" {
		fmt.Fprintf(w, "%s %s\n", hintStyle.Render("Suggestion:"), diagnosed.Hint)
	}
}

// chain splits an error chain into one message per level. A wrapper
// whose message is "<context>: <inner message>" contributes only its
// context; wrappers that add nothing are skipped.
func chain(err error) []string {
	var messages []string
	for err != nil {
		message := err.Error()
		if toolErr, ok := err.(*ToolError); ok {
			message = toolErr.Err.Error()
		}
		inner := errors.Unwrap(err)
		if inner == nil {
			messages = append(messages, message)
			break
		}
		innerMessage := inner.Error()
		if toolErr, ok := inner.(*ToolError); ok {
			innerMessage = toolErr.Err.Error()
		}
		switch {
		case message == innerMessage:
			// Transparent wrapper.
		case strings.HasSuffix(message, ": "+innerMessage):
			messages = append(messages, strings.TrimSuffix(message, ": "+innerMessage))
		default:
			// The wrapper reformats its cause; show it whole and stop.
			messages = append(messages, message)
			return messages
		}
		err = inner
	}
	return messages
}
