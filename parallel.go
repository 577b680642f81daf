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
	"strconv"
	"strings"
)

// ParamDef is one name bound to the list of values it ranges over.
type ParamDef struct {
	Name   string
	Values []string
}

// ParamGroup is one bracketed `[name=range ...]` block: every ParamDef in
// it is zipped together position-by-position, not cross-multiplied.
type ParamGroup struct {
	Params []ParamDef
}

// ParsedParallel is a fully parsed `[group][group]... template` line.
type ParsedParallel struct {
	Groups   []ParamGroup
	Template string
}

// ExpandedCommand is one concrete command produced by Expand, along with
// the label describing which parameter values produced it.
type ExpandedCommand struct {
	Command string
	Label   string
}

// ParseRange parses one range expression: a comma list, a numeric
// "start-end" range (zero-padded to match the widest bound when the
// start carries a leading zero), or a bare singleton value. A '-' that
// doesn't separate two integers, or a descending start>end range, is a
// parse failure (ok=false) rather than a singleton: such a block makes
// the whole line fall back to a single verbatim command.
func ParseRange(s string) ([]string, bool) {
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		out := make([]string, len(parts))
		for i, p := range parts {
			out[i] = strings.TrimSpace(p)
		}
		return out, true
	}

	if dash := strings.IndexByte(s, '-'); dash >= 0 {
		startStr, endStr := s[:dash], s[dash+1:]
		start, errS := strconv.Atoi(startStr)
		end, errE := strconv.Atoi(endStr)
		if errS != nil || errE != nil {
			return nil, false
		}
		if start > end {
			return nil, false
		}
		width := 0
		if len(startStr) > 1 && strings.HasPrefix(startStr, "0") {
			width = len(startStr)
			if len(endStr) > width {
				width = len(endStr)
			}
		}
		var out []string
		for v := start; v <= end; v++ {
			if width > 0 {
				out = append(out, fmt.Sprintf("%0*d", width, v))
			} else {
				out = append(out, strconv.Itoa(v))
			}
		}
		return out, true
	}

	return []string{s}, true
}

// parseBracketBlock parses the body of one `[...]` block: whitespace
// separated `name=range` pairs. Every ParamDef in the block must expand
// to the same length (they're zipped, not cross-multiplied) or the block
// is invalid.
func parseBracketBlock(body string) (ParamGroup, bool) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return ParamGroup{}, false
	}

	var group ParamGroup
	length := -1
	for _, field := range fields {
		eq := strings.IndexByte(field, '=')
		if eq <= 0 {
			return ParamGroup{}, false
		}
		name := field[:eq]
		values, ok := ParseRange(field[eq+1:])
		if !ok {
			return ParamGroup{}, false
		}
		if length == -1 {
			length = len(values)
		} else if len(values) != length {
			return ParamGroup{}, false
		}
		group.Params = append(group.Params, ParamDef{Name: name, Values: values})
	}

	return group, true
}

// ParseParallel parses a full `[group][group]... template` line. The
// input must begin with '[' and, once every bracketed block is consumed
// (blocks may be separated by spaces or tabs), what remains (trimmed)
// must be a non-empty template.
func ParseParallel(input string) (ParsedParallel, bool) {
	if !strings.HasPrefix(input, "[") {
		return ParsedParallel{}, false
	}

	var groups []ParamGroup
	rest := input
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return ParsedParallel{}, false
		}
		group, ok := parseBracketBlock(rest[1:end])
		if !ok {
			return ParsedParallel{}, false
		}
		groups = append(groups, group)
		rest = strings.TrimLeft(rest[end+1:], " \t")
	}

	template := strings.TrimSpace(rest)
	if template == "" || len(groups) == 0 {
		return ParsedParallel{}, false
	}

	return ParsedParallel{Groups: groups, Template: template}, true
}

// Expand produces the cross product across groups (zipped within each
// group) of the parsed template, substituting `{name}` tokens and, when
// there's exactly one group with exactly one parameter, bare `{}` too.
func (p ParsedParallel) Expand() []ExpandedCommand {
	type binding struct {
		name  string
		value string
	}

	bareAllowed := len(p.Groups) == 1 && len(p.Groups[0].Params) == 1

	var combinations [][]binding
	var build func(gi int, current []binding)
	build = func(gi int, current []binding) {
		if gi == len(p.Groups) {
			combo := make([]binding, len(current))
			copy(combo, current)
			combinations = append(combinations, combo)
			return
		}
		rowCount := 0
		if len(p.Groups[gi].Params) > 0 {
			rowCount = len(p.Groups[gi].Params[0].Values)
		}
		paramsInGroup := len(p.Groups[gi].Params)
		for r := 0; r < rowCount; r++ {
			var row []binding
			for pi := 0; pi < paramsInGroup; pi++ {
				param := p.Groups[gi].Params[pi]
				row = append(row, binding{name: param.Name, value: param.Values[r]})
			}
			build(gi+1, append(current, row...))
		}
	}
	build(0, nil)

	out := make([]ExpandedCommand, 0, len(combinations))
	for _, combo := range combinations {
		command := p.Template
		var labelParts []string
		for _, b := range combo {
			command = strings.ReplaceAll(command, "{"+b.name+"}", b.value)
			labelParts = append(labelParts, fmt.Sprintf("[%s=%s]", b.name, b.value))
		}
		if bareAllowed {
			command = strings.ReplaceAll(command, "{}", combo[0].value)
		}
		out = append(out, ExpandedCommand{Command: command, Label: strings.Join(labelParts, "")})
	}

	return out
}
