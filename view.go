// Copyright 2025 Naren Yellavula
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.width < 20 || m.height < 10 {
		return "Terminal too small. Please resize your terminal."
	}

	outputHeight, suggestionHeight, inputHeight := m.layoutHeights()

	var b strings.Builder
	b.WriteString(m.renderOutputPane(m.width, outputHeight))
	b.WriteString("\n")
	if suggestionHeight > 0 {
		b.WriteString(m.renderSuggestionsPane(m.width, suggestionHeight))
		b.WriteString("\n")
	}
	b.WriteString(m.renderInputPane(m.width, inputHeight))

	return b.String()
}

func repeatToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat(s, width)
}

// renderOutputPane draws the bordered output viewport, including the C7
// boxed framing for completed tasks and a plain separator for bare
// status/warning lines.
func (m Model) renderOutputPane(width, height int) string {
	contentWidth := width - 2
	contentHeight := height - 2
	if contentHeight < 0 {
		contentHeight = 0
	}

	var rendered []string
	for _, line := range m.output {
		rendered = append(rendered, renderOutputLine(line, contentWidth)...)
	}

	total := len(rendered)
	maxScroll := total - contentHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	offset := m.scrollOffset
	if m.stickToBottom {
		offset = maxScroll
	}
	if offset > maxScroll {
		offset = maxScroll
	}
	if offset < 0 {
		offset = 0
	}

	end := offset + contentHeight
	if end > total {
		end = total
	}
	visible := rendered[offset:end]
	for len(visible) < contentHeight {
		visible = append(visible, strings.Repeat(" ", contentWidth))
	}

	title := " Output "
	if m.parallelActive && m.parallelDone < m.parallelTotal {
		title = fmt.Sprintf(" Output (%d/%d completed) ", m.parallelDone, m.parallelTotal)
	}

	top := "┌" + m.styles.Title.Render(title) + repeatToWidth("─", max0(contentWidth-lipgloss.Width(title))) + "┐"
	bottom := "└" + repeatToWidth("─", contentWidth) + "┘"

	var b strings.Builder
	b.WriteString(top)
	for _, line := range visible {
		b.WriteString("\n│")
		b.WriteString(line)
		b.WriteString("│")
	}
	b.WriteString("\n")
	b.WriteString(bottom)
	return b.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// renderOutputLine expands one buffered OutputLine into zero or more
// display rows, padded to contentWidth.
func renderOutputLine(line OutputLine, contentWidth int) []string {
	switch {
	case strings.HasPrefix(line.Label, topMarkerPrefix):
		label := line.Label[len(topMarkerPrefix):]
		left := "┌"
		if label != "" {
			left = fmt.Sprintf("┌─ %s ", label)
		}
		leftW := lipgloss.Width(left)
		right := "─┐"
		rightW := lipgloss.Width(right)
		fill := repeatToWidth("─", max0(contentWidth-leftW-rightW))
		return []string{padToWidth(left+fill+right, contentWidth)}

	case line.Label == botMarker:
		left := "└"
		var right string
		if line.Content == "" {
			right = "─┘"
		} else {
			right = fmt.Sprintf(" %s ─┘", line.Content)
		}
		fill := repeatToWidth("─", max0(contentWidth-lipgloss.Width(left)-lipgloss.Width(right)))
		return []string{padToWidth(left+fill+right, contentWidth)}

	case line.Label == boxMarker:
		innerWidth := contentWidth - 2
		contentLines := strings.Split(line.Content, "\n")
		if len(contentLines) == 0 {
			contentLines = []string{""}
		}
		out := make([]string, 0, len(contentLines))
		for _, cl := range contentLines {
			pad := innerWidth - lipgloss.Width(cl)
			if pad < 0 {
				pad = 0
			}
			out = append(out, "│"+cl+strings.Repeat(" ", pad)+"│")
		}
		return out

	case line.Stream == StreamStatus:
		right := fmt.Sprintf(" %s ", line.Content)
		fill := repeatToWidth("─", max0(contentWidth-1-lipgloss.Width(right)))
		return []string{padToWidth(" "+fill+right, contentWidth)}

	default:
		return []string{padToWidth(line.Content, contentWidth)}
	}
}

func padToWidth(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func (m Model) renderSuggestionsPane(width, height int) string {
	contentWidth := width - 2
	contentHeight := height - 2

	lines := make([]string, 0, contentHeight)
	for i, s := range m.suggestions {
		if i >= contentHeight {
			break
		}
		indicator := " "
		if i == m.selectedSuggestion {
			indicator = "▌"
		}
		kind := suggestionKindLabel(s.Kind)
		prefix := fmt.Sprintf("%s[%s] ", indicator, kind)

		var body string
		if s.Kind.ReplacesWholeInput() {
			body = s.Text
		} else {
			typed, suffix := m.suggestionFullPreview(s)
			body = typed + suffix
		}
		lines = append(lines, padToWidth(prefix+body, contentWidth))
	}
	for len(lines) < contentHeight {
		lines = append(lines, strings.Repeat(" ", contentWidth))
	}

	title := " Suggestions (Tab/Up/Down: navigate, Right: next word, Ctrl+Y: accept) "
	top := "┌" + repeatToWidth("─", max0(contentWidth-lipgloss.Width(title))) + title + "┐"
	if lipgloss.Width(title) >= contentWidth {
		top = "┌" + title[:min(len(title), contentWidth)] + "┐"
	}
	bottom := "└" + repeatToWidth("─", contentWidth) + "┘"

	var b strings.Builder
	b.WriteString(top)
	for _, l := range lines {
		b.WriteString("\n│")
		b.WriteString(l)
		b.WriteString("│")
	}
	b.WriteString("\n")
	b.WriteString(bottom)
	return b.String()
}

func suggestionKindLabel(k SuggestionKind) string {
	switch k {
	case KindCommand, KindSubcommand:
		return "cmd"
	case KindArgument:
		return "arg"
	case KindArgumentValue:
		return "val"
	}
	return ""
}

func (m Model) renderInputPane(width, height int) string {
	contentWidth := width - 2

	text := m.input
	if preview, ok := m.suggestionPreview(); ok {
		text = m.input + m.styles.Dim.Render(preview)
	}
	line := padToWidth(text, contentWidth)

	title := " Input "
	border := m.styles.BorderActive
	if m.isQuitHintActive() {
		title = " Press Ctrl+C again to quit "
		border = m.styles.BorderQuit
	}

	clock := FormatTime(time.Now())
	top := "┌" + title + repeatToWidth("─", max0(contentWidth-lipgloss.Width(title))) + "┐"
	bottomLabel := " " + clock + " "
	bottom := "└" + repeatToWidth("─", max0(contentWidth-lipgloss.Width(bottomLabel))) + bottomLabel + "┘"

	var b strings.Builder
	b.WriteString(border.Render(top))
	for i := 1; i < height-1; i++ {
		if i == 1 {
			b.WriteString("\n│")
			b.WriteString(line)
			b.WriteString("│")
		} else {
			b.WriteString("\n│")
			b.WriteString(strings.Repeat(" ", contentWidth))
			b.WriteString("│")
		}
	}
	b.WriteString("\n")
	b.WriteString(border.Render(bottom))
	return b.String()
}
