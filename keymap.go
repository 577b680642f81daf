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
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg applies the emacs-style keymap to one key event. Returns
// true if the application should quit.
func handleKeyMsg(m *Model, msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.tryQuit()

	case tea.KeyCtrlD:
		if m.input == "" {
			return m.tryQuit()
		}
		m.deleteCharForward()
		return false

	case tea.KeyEsc:
		return m.tryQuit()

	case tea.KeyTab:
		m.nextSuggestion()
		return false

	case tea.KeyShiftTab:
		m.prevSuggestion()
		return false

	case tea.KeyCtrlY:
		m.acceptSuggestion()
		return false

	case tea.KeyCtrlP:
		m.prevSuggestion()
		return false

	case tea.KeyCtrlN:
		m.nextSuggestion()
		return false

	case tea.KeyUp:
		if m.input == "" {
			m.recallLastCommand()
		} else {
			m.prevSuggestion()
		}
		return false

	case tea.KeyDown:
		m.nextSuggestion()
		return false

	case tea.KeyCtrlA:
		m.moveCursorHome()
		return false

	case tea.KeyCtrlE:
		m.moveCursorEnd()
		return false

	case tea.KeyCtrlW:
		m.deleteWordBackward()
		return false

	case tea.KeyCtrlU:
		m.deleteToLineStart()
		return false

	case tea.KeyCtrlK:
		m.deleteToLineEnd()
		return false

	case tea.KeyCtrlL:
		m.clearOutput()
		return false

	case tea.KeyBackspace:
		if msg.Alt {
			m.deleteWordBackward()
		} else {
			m.deleteCharBackward()
		}
		return false

	case tea.KeyDelete:
		if msg.Alt {
			m.deleteWordForward()
		} else {
			m.deleteCharForward()
		}
		return false

	case tea.KeyCtrlB:
		m.moveCursorLeft()
		return false

	case tea.KeyCtrlF:
		m.moveCursorRight()
		return false

	case tea.KeyLeft:
		if msg.Alt {
			m.moveCursorWordLeft()
		} else {
			m.moveCursorLeft()
		}
		return false

	case tea.KeyRight:
		switch {
		case msg.Alt:
			m.moveCursorWordRight()
		case m.cursor == len(m.input):
			m.acceptNextPreviewWord()
		default:
			m.moveCursorRight()
		}
		return false

	case tea.KeyHome:
		m.moveCursorHome()
		return false

	case tea.KeyEnd:
		m.moveCursorEnd()
		return false

	case tea.KeyPgUp:
		m.scrollUp(10)
		return false

	case tea.KeyPgDown:
		m.scrollDown(10)
		return false

	case tea.KeyEnter:
		return m.submitCommand()

	case tea.KeyRunes:
		if msg.Alt {
			if len(msg.Runes) == 1 {
				switch msg.Runes[0] {
				case 'b':
					m.moveCursorWordLeft()
				case 'f':
					m.moveCursorWordRight()
				case 'd':
					m.deleteWordForward()
				}
			}
			return false
		}
		for _, r := range msg.Runes {
			m.insertChar(r)
		}
		return false

	case tea.KeySpace:
		m.insertChar(' ')
		return false
	}

	return false
}
