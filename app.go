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
	"context"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// OutputLine is one line of framed output destined for the output pane.
// Label carries either a real runner label or one of the C7 framing
// sentinels ("\x00top:<label>", "\x00box", "\x00bot").
type OutputLine struct {
	Label   string
	Stream  StreamType
	Content string
}

const (
	topMarkerPrefix = "\x00top:"
	boxMarker       = "\x00box"
	botMarker       = "\x00bot"
)

// Styles holds the lipgloss styles the view layer renders with.
type Styles struct {
	BorderActive lipgloss.Style
	BorderQuit   lipgloss.Style
	Title        lipgloss.Style
	Dim          lipgloss.Style
}

func NewStyles() *Styles {
	return &Styles{
		BorderActive: lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		BorderQuit:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		Title:        lipgloss.NewStyle().Bold(true),
		Dim:          lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Model is the bubbletea model driving mux's single-screen TUI.
type Model struct {
	ready  bool
	width  int
	height int

	input  string
	cursor int // byte offset into input

	output        []OutputLine
	scrollOffset  int
	stickToBottom bool

	searcher  *HistorySearcher
	suggester *SuggestionEngine
	runner    *TaskRunner
	ctx       context.Context
	cancel    context.CancelFunc

	suggestions        []Suggestion
	selectedSuggestion int

	taskStartTimes map[TaskID]time.Time
	pendingOutput  map[TaskID][]OutputLine
	parallelDone   int
	parallelTotal  int
	parallelActive bool

	lastQuitPress time.Time

	maxOutputLines int
	boxPadH        int
	boxPadV        int

	styles *Styles
}

// NewModel builds the initial model. The caller owns runner/searcher
// lifecycle; Model only reads and mutates them.
func NewModel(searcher *HistorySearcher, suggester *SuggestionEngine, runner *TaskRunner, cfg OutputConfig) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		searcher:       searcher,
		suggester:      suggester,
		runner:         runner,
		ctx:            ctx,
		cancel:         cancel,
		stickToBottom:  true,
		taskStartTimes: make(map[TaskID]time.Time),
		pendingOutput:  make(map[TaskID][]OutputLine),
		maxOutputLines: cfg.MaxLines,
		boxPadH:        cfg.BoxPaddingHorizontal,
		boxPadV:        cfg.BoxPaddingVertical,
		styles:         NewStyles(),
	}
}

func (m *Model) AddWarning(message string) {
	m.output = append(m.output, OutputLine{Stream: StreamStatus, Content: message})
}

// --- byte-aware cursor helpers ---

func prevCharPos(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	before := s[:pos]
	last := 0
	for i := range before {
		last = i
	}
	return last
}

func nextCharPos(s string, pos int) int {
	if pos >= len(s) {
		return len(s)
	}
	after := s[pos:]
	count := 0
	for i := range after {
		if count == 1 {
			return pos + i
		}
		count++
	}
	return len(s)
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

func findPrevWordBoundary(s string, pos int) int {
	before := s[:min(pos, len(s))]
	trimmed := strings.TrimRightFunc(before, isSpace)
	if trimmed == "" {
		return 0
	}
	idx := strings.LastIndexFunc(trimmed, isSpace)
	if idx < 0 {
		return 0
	}
	// move past the single whitespace rune found at idx
	_, size := decodeRuneAt(trimmed, idx)
	return idx + size
}

func findNextWordBoundary(s string, pos int) int {
	after := s[min(pos, len(s)):]
	trimmedWord := strings.TrimLeftFunc(after, func(r rune) bool { return !isSpace(r) })
	trimmedAll := strings.TrimLeftFunc(trimmedWord, isSpace)
	return pos + (len(after) - len(trimmedAll))
}

func extractFirstWord(text string) string {
	afterLeading := strings.TrimLeft(text, " \t\r\n")
	idx := strings.IndexFunc(afterLeading, isSpace)
	if idx < 0 {
		idx = len(afterLeading)
	}
	total := (len(text) - len(afterLeading)) + idx
	return text[:total]
}

func decodeRuneAt(s string, i int) (rune, int) {
	if i < 0 || i >= len(s) {
		return utf8.RuneError, 1
	}
	return utf8.DecodeRuneInString(s[i:])
}

// --- input editing ---

func (m *Model) insertChar(c rune) {
	m.input = m.input[:m.cursor] + string(c) + m.input[m.cursor:]
	m.cursor += len(string(c))
	m.updateSuggestions()
}

func (m *Model) deleteCharBackward() {
	if m.cursor > 0 {
		prev := prevCharPos(m.input, m.cursor)
		m.input = m.input[:prev] + m.input[m.cursor:]
		m.cursor = prev
		m.updateSuggestions()
	}
}

func (m *Model) deleteCharForward() {
	if m.cursor < len(m.input) {
		next := nextCharPos(m.input, m.cursor)
		m.input = m.input[:m.cursor] + m.input[next:]
		m.updateSuggestions()
	}
}

func (m *Model) deleteWordBackward() {
	start := findPrevWordBoundary(m.input, m.cursor)
	if start < m.cursor {
		m.input = m.input[:start] + m.input[m.cursor:]
		m.cursor = start
		m.updateSuggestions()
	}
}

func (m *Model) deleteWordForward() {
	end := findNextWordBoundary(m.input, m.cursor)
	if end > m.cursor {
		m.input = m.input[:m.cursor] + m.input[end:]
		m.updateSuggestions()
	}
}

func (m *Model) deleteToLineStart() {
	if m.cursor > 0 {
		m.input = m.input[m.cursor:]
		m.cursor = 0
		m.updateSuggestions()
	}
}

func (m *Model) deleteToLineEnd() {
	if m.cursor < len(m.input) {
		m.input = m.input[:m.cursor]
		m.updateSuggestions()
	}
}

// --- cursor movement ---

func (m *Model) moveCursorLeft() {
	if m.cursor > 0 {
		m.cursor = prevCharPos(m.input, m.cursor)
	}
}

func (m *Model) moveCursorRight() {
	if m.cursor < len(m.input) {
		m.cursor = nextCharPos(m.input, m.cursor)
	}
}

func (m *Model) moveCursorWordLeft() {
	m.cursor = findPrevWordBoundary(m.input, m.cursor)
}

func (m *Model) moveCursorWordRight() {
	m.cursor = findNextWordBoundary(m.input, m.cursor)
}

func (m *Model) moveCursorHome() { m.cursor = 0 }
func (m *Model) moveCursorEnd()  { m.cursor = len(m.input) }

func (m *Model) acceptNextPreviewWord() {
	if m.cursor != len(m.input) {
		return
	}
	preview, ok := m.suggestionPreview()
	if !ok {
		return
	}
	word := extractFirstWord(preview)
	if word == "" {
		return
	}
	m.input += word
	m.cursor = len(m.input)
	m.updateSuggestions()
}

// --- submission ---

// submitCommand runs the current input through the parallel expander and
// the task runner, or recognizes an internal exit/quit command. Returns
// true if the caller should quit.
func (m *Model) submitCommand() bool {
	if m.input == "" {
		return false
	}

	trimmed := strings.TrimSpace(m.input)
	if trimmed == "exit" || trimmed == "quit" {
		return true
	}

	if m.searcher != nil {
		_ = m.searcher.RecordUsage(m.input)
	}
	if m.suggester != nil {
		m.suggester.IndexCommand(m.input)
	}

	if parsed, ok := ParseParallel(trimmed); ok {
		expanded := parsed.Expand()
		m.parallelActive = true
		m.parallelDone = 0
		m.parallelTotal = len(expanded)
		for _, cmd := range expanded {
			m.runner.SpawnLabeled(m.ctx, cmd.Command, cmd.Label)
		}
	} else {
		m.runner.SpawnLabeled(m.ctx, m.input, "")
	}

	m.input = ""
	m.cursor = 0
	m.stickToBottom = true
	return false
}

// pushOutput folds one runner message into the output buffer, buffering
// a task's content lines until its terminal status arrives and then
// flushing the whole boxed block per the C7 framing contract.
func (m *Model) pushOutput(msg OutputMessage) {
	if msg.Stream == StreamStatus {
		if msg.Content == "started" {
			m.taskStartTimes[msg.TaskID] = time.Now()
			return
		}

		var runtime string
		if start, ok := m.taskStartTimes[msg.TaskID]; ok {
			runtime = runtimeString(time.Since(start))
			delete(m.taskStartTimes, msg.TaskID)
		}

		m.appendOutput(OutputLine{Label: topMarkerPrefix + msg.Label, Stream: StreamStatus})
		for i := 0; i < m.boxPadV; i++ {
			m.appendOutput(OutputLine{Label: boxMarker, Stream: StreamOutput})
		}
		for _, line := range m.pendingOutput[msg.TaskID] {
			line.Label = boxMarker
			m.appendOutput(line)
		}
		delete(m.pendingOutput, msg.TaskID)
		for i := 0; i < m.boxPadV; i++ {
			m.appendOutput(OutputLine{Label: boxMarker, Stream: StreamOutput})
		}
		m.appendOutput(OutputLine{Label: botMarker, Stream: StreamStatus, Content: runtime})

		if m.parallelActive {
			m.parallelDone++
		}
		return
	}

	m.pendingOutput[msg.TaskID] = append(m.pendingOutput[msg.TaskID], OutputLine{
		Label:   msg.Label,
		Stream:  msg.Stream,
		Content: msg.Content,
	})
}

func (m *Model) appendOutput(line OutputLine) {
	m.output = append(m.output, line)
	if m.maxOutputLines > 0 {
		for len(m.output) > m.maxOutputLines {
			m.output = m.output[1:]
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
		}
	}
}

func (m *Model) clearOutput() {
	m.output = nil
	m.scrollOffset = 0
	m.stickToBottom = true
}

// --- history recall ---

func (m *Model) recallLastCommand() {
	if m.input != "" || m.searcher == nil {
		return
	}
	cmd := m.searcher.MostRecentCommand()
	if cmd == "" {
		return
	}
	m.input = cmd
	m.cursor = len(m.input)
	m.updateSuggestions()
}

// --- scrolling ---

func (m *Model) scrollUp(lines int) {
	m.scrollOffset -= lines
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
	m.stickToBottom = false
}

func (m *Model) scrollDown(lines int) {
	m.scrollOffset += lines
	contentHeight := m.outputContentHeight()
	maxScroll := len(m.output) - contentHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scrollOffset >= maxScroll {
		m.scrollOffset = maxScroll
		m.stickToBottom = true
	}
}

// outputContentHeight computes how many output lines are visible given
// the current window size, mirroring the layout View() lays out.
func (m *Model) outputContentHeight() int {
	outputHeight, _, _ := m.layoutHeights()
	h := outputHeight - 2
	if h < 0 {
		h = 0
	}
	return h
}

// layoutHeights returns (output, suggestions, input) pane heights for the
// current window size and state, in terminal rows including borders.
func (m *Model) layoutHeights() (int, int, int) {
	inputContentWidth := m.width - 2
	inputLines := 1
	if inputContentWidth > 0 {
		if l := len(m.input)/inputContentWidth + 1; l > inputLines {
			inputLines = l
		}
	}
	inputHeight := inputLines + 2

	suggestionHeight := 0
	if len(m.suggestions) > 0 {
		suggestionHeight = 7
	}

	outputHeight := m.height - suggestionHeight - inputHeight
	if outputHeight < 1 {
		outputHeight = 1
	}
	return outputHeight, suggestionHeight, inputHeight
}

// --- suggestions ---

func (m *Model) updateSuggestions() {
	if m.suggester == nil {
		m.suggestions = nil
		return
	}
	m.suggestions = m.suggester.Suggest(m.input, m.searcher, 8)
	m.selectedSuggestion = 0
}

func (m *Model) acceptSuggestion() {
	if len(m.suggestions) == 0 || m.selectedSuggestion >= len(m.suggestions) {
		return
	}
	s := m.suggestions[m.selectedSuggestion]

	if s.Kind.ReplacesWholeInput() {
		m.input = s.Text
		m.cursor = len(m.input)
	} else if !strings.HasSuffix(m.input, " ") {
		newInput := strings.TrimRight(m.input, " ")
		if idx := strings.LastIndexFunc(newInput, isSpace); idx >= 0 {
			_, size := decodeRuneAt(newInput, idx)
			newInput = newInput[:idx+size] + s.Text
		} else {
			newInput = s.Text
		}
		m.input = newInput
		m.cursor = len(m.input)
	} else {
		m.input += s.Text
		m.cursor = len(m.input)
	}

	m.updateSuggestions()
}

func (m *Model) nextSuggestion() {
	if len(m.suggestions) > 0 {
		m.selectedSuggestion = (m.selectedSuggestion + 1) % len(m.suggestions)
	}
}

func (m *Model) prevSuggestion() {
	if len(m.suggestions) > 0 {
		if m.selectedSuggestion == 0 {
			m.selectedSuggestion = len(m.suggestions) - 1
		} else {
			m.selectedSuggestion--
		}
	}
}

// suggestionPreview returns the ghost text that should trail the cursor
// for the currently selected suggestion, if any.
func (m *Model) suggestionPreview() (string, bool) {
	if len(m.suggestions) == 0 || m.selectedSuggestion >= len(m.suggestions) {
		return "", false
	}
	s := m.suggestions[m.selectedSuggestion]

	if s.Kind.ReplacesWholeInput() {
		if strings.HasPrefix(s.Text, m.input) {
			return s.Text[len(m.input):], true
		}
		if m.input == "" {
			return s.Text, true
		}
		return "", false
	}

	if strings.HasSuffix(m.input, " ") {
		return s.Text, true
	}
	start := 0
	if idx := strings.LastIndexFunc(m.input, isSpace); idx >= 0 {
		_, size := decodeRuneAt(m.input, idx)
		start = idx + size
	}
	currentWord := m.input[start:]
	if strings.HasPrefix(s.Text, currentWord) {
		return s.Text[len(currentWord):], true
	}
	return " " + s.Text, true
}

// suggestionFullPreview splits a suggestion into the already-typed prefix
// and the new suffix it would contribute, for display purposes.
func (m *Model) suggestionFullPreview(s Suggestion) (typed string, suffix string) {
	if s.Kind.ReplacesWholeInput() {
		if m.input != "" && strings.HasPrefix(s.Text, m.input) {
			return m.input, s.Text[len(m.input):]
		}
		return "", s.Text
	}

	if !strings.HasSuffix(m.input, " ") {
		trimmed := strings.TrimRight(m.input, " ")
		if idx := strings.LastIndexFunc(trimmed, isSpace); idx >= 0 {
			_, size := decodeRuneAt(trimmed, idx)
			end := idx + size
			return trimmed[:end], s.Text
		}
		return "", s.Text
	}
	return m.input, s.Text
}

// --- quit ---

func (m *Model) tryQuit() bool {
	if !m.lastQuitPress.IsZero() && time.Since(m.lastQuitPress) < time.Second {
		return true
	}
	m.lastQuitPress = time.Now()
	return false
}

func (m *Model) isQuitHintActive() bool {
	return !m.lastQuitPress.IsZero() && time.Since(m.lastQuitPress) < time.Second
}

// --- bubbletea plumbing ---

type outputMsg OutputMessage
type tickMsg time.Time

func waitForOutput(runner *TaskRunner) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-runner.Output()
		if !ok {
			return nil
		}
		return outputMsg(msg)
	}
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForOutput(m.runner), tickEvery())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		quit := handleKeyMsg(&m, msg)
		if quit {
			m.runner.CancelAll()
			m.cancel()
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.runner.ResizeAll(uint16(msg.Width), uint16(msg.Height))
		return m, nil

	case outputMsg:
		m.pushOutput(OutputMessage(msg))
		return m, waitForOutput(m.runner)

	case tickMsg:
		return m, tickEvery()
	}

	return m, nil
}
