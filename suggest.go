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
	"sort"
	"strings"

	"github.com/mattn/go-shellwords"
)

// ParsedArg is one flag token from a parsed command line: "--name=value",
// "--name value", or a bare boolean "--name".
type ParsedArg struct {
	Name     string
	Value    string
	HasValue bool
}

// ParsedCommand splits a tokenized command line into its leading
// subcommand chain ("git remote add") and the flags that follow it.
type ParsedCommand struct {
	Prefixes []string
	Args     []ParsedArg
}

// ParseCommand tokenizes input with shell quoting rules and splits it
// into prefixes (every token before the first one starting with '-') and
// args (each '-' token, consuming the following token as its value
// unless that token is itself a flag).
func ParseCommand(input string) ParsedCommand {
	input = strings.TrimSpace(input)
	if input == "" {
		return ParsedCommand{}
	}

	tokens, err := shellwords.Parse(input)
	if err != nil || len(tokens) == 0 {
		return ParsedCommand{}
	}

	prefixEnd := len(tokens)
	for i, t := range tokens {
		if strings.HasPrefix(t, "-") {
			prefixEnd = i
			break
		}
	}

	parsed := ParsedCommand{Prefixes: append([]string{}, tokens[:prefixEnd]...)}

	for i := prefixEnd; i < len(tokens); i++ {
		tok := tokens[i]
		if !strings.HasPrefix(tok, "-") {
			continue
		}
		if eq := strings.IndexByte(tok, '='); eq >= 0 {
			parsed.Args = append(parsed.Args, ParsedArg{Name: tok[:eq], Value: tok[eq+1:], HasValue: true})
			continue
		}
		if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") {
			parsed.Args = append(parsed.Args, ParsedArg{Name: tok, Value: tokens[i+1], HasValue: true})
			i++
			continue
		}
		parsed.Args = append(parsed.Args, ParsedArg{Name: tok, HasValue: false})
	}

	return parsed
}

// SplitInput divides a raw, possibly still-being-typed input line into
// the part that's finished (usable with ParseCommand) and the partial
// word the cursor is currently sitting in. A trailing space means the
// previous word is complete and the partial word is empty.
func SplitInput(input string) (completed string, partial string) {
	if input == "" {
		return "", ""
	}
	if strings.HasSuffix(input, " ") {
		return strings.TrimRight(input, " "), ""
	}
	if idx := strings.LastIndexByte(input, ' '); idx >= 0 {
		return input[:idx], input[idx+1:]
	}
	return "", input
}

// NextExpected names what kind of token the cursor is about to complete.
type NextExpected int

const (
	ExpectCommand NextExpected = iota
	ExpectSubcommand
	ExpectArgument
	ExpectValue
)

// InputContext is the result of analyzing the completed portion of the
// input line: where we are in the subcommand chain, which flags have
// already been given, and what comes next.
type InputContext struct {
	Prefixes     []string
	ExistingArgs map[string]bool
	NextExpected NextExpected
	ValueArgName string
}

// SuggestionKind labels what a Suggestion completes, which in turn
// decides how accepting it edits the input line.
type SuggestionKind int

const (
	KindCommand SuggestionKind = iota
	KindSubcommand
	KindArgument
	KindArgumentValue
)

// ReplacesWholeInput reports whether accepting this suggestion should
// replace the entire input line rather than splice after the last word.
func (k SuggestionKind) ReplacesWholeInput() bool {
	return k == KindCommand || k == KindSubcommand
}

// Suggestion is one ranked completion candidate.
type Suggestion struct {
	Kind    SuggestionKind
	Text    string
	ArgName string // set only for KindArgumentValue
}

func prefixKey(prefixes []string) string {
	return strings.Join(prefixes, "\x1f")
}

// analyzeCompleted determines what the engine should suggest next given
// the already-typed, fully parsed portion of the input.
func analyzeCompleted(parsed ParsedCommand, takesValue func(string) bool) InputContext {
	existing := make(map[string]bool, len(parsed.Args))
	for _, a := range parsed.Args {
		existing[a.Name] = true
	}

	ctx := InputContext{Prefixes: parsed.Prefixes, ExistingArgs: existing}

	if len(parsed.Args) > 0 {
		last := parsed.Args[len(parsed.Args)-1]
		if !last.HasValue && takesValue(last.Name) {
			ctx.NextExpected = ExpectValue
			ctx.ValueArgName = last.Name
			return ctx
		}
	}

	switch {
	case len(parsed.Prefixes) == 0 && len(parsed.Args) == 0:
		ctx.NextExpected = ExpectCommand
	case len(parsed.Prefixes) == 0:
		ctx.NextExpected = ExpectArgument
	case len(parsed.Args) == 0:
		ctx.NextExpected = ExpectSubcommand
	default:
		ctx.NextExpected = ExpectArgument
	}
	return ctx
}

type weighted struct {
	name   string
	weight float64
}

// SuggestionEngine holds per-prefix argument and value frequency tables
// built from the indexed command history, used to suggest flags and
// flag values in context rather than just fuzzy-matching whole commands.
type SuggestionEngine struct {
	argIndex        map[string]map[string]float64            // prefixKey -> arg name -> weight
	argValueIndex   map[string]map[string]map[string]float64  // prefixKey -> arg name -> value -> weight
	globalArgValues map[string]map[string]float64             // arg name -> value -> weight
	valueTakingArgs map[string]bool
}

// NewSuggestionEngine builds the engine from a ranked command snapshot,
// weighting each command's contribution by max(frequency, 1).
func NewSuggestionEngine(commands []IndexedCommand) *SuggestionEngine {
	e := &SuggestionEngine{
		argIndex:        make(map[string]map[string]float64),
		argValueIndex:   make(map[string]map[string]map[string]float64),
		globalArgValues: make(map[string]map[string]float64),
		valueTakingArgs: make(map[string]bool),
	}
	for _, c := range commands {
		weight := float64(c.Frequency)
		if weight < 1 {
			weight = 1
		}
		e.indexParsed(ParseCommand(c.Command), weight)
	}
	return e
}

// IndexCommand folds one more command into the engine's indices at
// weight 1, without requiring a full rebuild — used when a freshly
// submitted command wasn't part of the snapshot the engine was built
// from.
func (e *SuggestionEngine) IndexCommand(command string) {
	e.indexParsed(ParseCommand(command), 1)
}

func (e *SuggestionEngine) indexParsed(parsed ParsedCommand, weight float64) {
	for _, a := range parsed.Args {
		if a.HasValue {
			e.valueTakingArgs[a.Name] = true
		}
	}

	for depth := 1; depth <= len(parsed.Prefixes); depth++ {
		key := prefixKey(parsed.Prefixes[:depth])
		if e.argIndex[key] == nil {
			e.argIndex[key] = make(map[string]float64)
		}
		if e.argValueIndex[key] == nil {
			e.argValueIndex[key] = make(map[string]map[string]float64)
		}
		for _, a := range parsed.Args {
			e.argIndex[key][a.Name] += weight
			if a.HasValue && a.Value != "" {
				if e.argValueIndex[key][a.Name] == nil {
					e.argValueIndex[key][a.Name] = make(map[string]float64)
				}
				e.argValueIndex[key][a.Name][a.Value] += weight
			}
		}
	}

	for _, a := range parsed.Args {
		if a.HasValue && a.Value != "" {
			if e.globalArgValues[a.Name] == nil {
				e.globalArgValues[a.Name] = make(map[string]float64)
			}
			e.globalArgValues[a.Name][a.Value] += weight
		}
	}
}

func (e *SuggestionEngine) argTakesValue(name string) bool {
	return e.valueTakingArgs[name]
}

// Suggest returns up to limit ranked completions for input.
func (e *SuggestionEngine) Suggest(input string, searcher *HistorySearcher, limit int) []Suggestion {
	completed, partial := SplitInput(input)
	parsed := ParseCommand(completed)
	ctx := analyzeCompleted(parsed, e.argTakesValue)

	switch ctx.NextExpected {
	case ExpectCommand:
		return fuzzyCommands(searcher, partial, limit, KindCommand)

	case ExpectSubcommand:
		results := fuzzyCommands(searcher, strings.TrimSpace(input), limit, KindSubcommand)
		if len(results) != 0 {
			return results
		}
		if strings.HasPrefix(partial, "-") {
			return e.suggestArgs(ctx, partial, limit)
		}
		return nil

	case ExpectArgument:
		results := fuzzyCommands(searcher, strings.TrimSpace(input), limit, KindSubcommand)
		if len(results) == 0 {
			results = e.suggestArgs(ctx, partial, limit)
		}
		return results

	case ExpectValue:
		results := fuzzyCommands(searcher, strings.TrimSpace(input), limit, KindSubcommand)
		if len(results) == 0 {
			results = e.suggestArgValues(ctx, ctx.ValueArgName, partial, limit)
		}
		if len(results) == 0 {
			results = e.suggestArgs(ctx, partial, limit)
		}
		return results
	}

	return nil
}

func fuzzyCommands(searcher *HistorySearcher, query string, limit int, kind SuggestionKind) []Suggestion {
	if searcher == nil {
		return nil
	}
	results := searcher.Search(query, limit)
	out := make([]Suggestion, 0, len(results))
	for _, r := range results {
		out = append(out, Suggestion{Kind: kind, Text: r.Command})
	}
	return out
}

// suggestArgs ranks flag names for the current prefix chain: the
// innermost (longest) prefix's weight counts double, every shallower
// prefix counts once, and a name's score is the max across the depths it
// appears at rather than a sum.
func (e *SuggestionEngine) suggestArgs(ctx InputContext, partial string, limit int) []Suggestion {
	scores := make(map[string]float64)

	innermost := len(ctx.Prefixes)
	for depth := 1; depth <= len(ctx.Prefixes); depth++ {
		key := prefixKey(ctx.Prefixes[:depth])
		boost := 1.0
		if depth == innermost {
			boost = 2.0
		}
		for name, w := range e.argIndex[key] {
			if ctx.ExistingArgs[name] {
				continue
			}
			if partial != "" && !strings.HasPrefix(name, partial) {
				continue
			}
			score := w * boost
			if score > scores[name] {
				scores[name] = score
			}
		}
	}

	return rankWeighted(scores, limit, KindArgument, "")
}

// suggestArgValues ranks previously seen values for argName, preferring
// values seen under the current prefix chain (innermost x2, shallower
// x1.5) and falling back to every value ever seen for argName anywhere
// (no boost) if nothing matches at any prefix depth.
func (e *SuggestionEngine) suggestArgValues(ctx InputContext, argName, partial string, limit int) []Suggestion {
	scores := make(map[string]float64)
	innermost := len(ctx.Prefixes)

	for depth := 1; depth <= len(ctx.Prefixes); depth++ {
		key := prefixKey(ctx.Prefixes[:depth])
		boost := 1.5
		if depth == innermost {
			boost = 2.0
		}
		for value, w := range e.argValueIndex[key][argName] {
			if partial != "" && !strings.Contains(value, partial) {
				continue
			}
			score := w * boost
			if score > scores[value] {
				scores[value] = score
			}
		}
	}

	if len(scores) == 0 {
		for value, w := range e.globalArgValues[argName] {
			if partial != "" && !strings.Contains(value, partial) {
				continue
			}
			if w > scores[value] {
				scores[value] = w
			}
		}
	}

	return rankWeighted(scores, limit, KindArgumentValue, argName)
}

func rankWeighted(scores map[string]float64, limit int, kind SuggestionKind, argName string) []Suggestion {
	items := make([]weighted, 0, len(scores))
	for name, w := range scores {
		items = append(items, weighted{name: name, weight: w})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].weight > items[j].weight })
	if len(items) > limit {
		items = items[:limit]
	}

	out := make([]Suggestion, len(items))
	for i, it := range items {
		out[i] = Suggestion{Kind: kind, Text: it.name, ArgName: argName}
	}
	return out
}
