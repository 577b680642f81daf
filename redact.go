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
	"bytes"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const redactionMarker = "***"

// safeEnvVars never get redacted; everything else assigned or expanded in
// the command is considered potentially sensitive.
var safeEnvVars = map[string]bool{
	"PATH": true, "HOME": true, "USER": true, "PWD": true, "OLDPWD": true,
	"SHELL": true, "LANG": true, "TERM": true, "EDITOR": true,
	"HOSTNAME": true, "LOGNAME": true, "TMPDIR": true, "SHLVL": true,
	"COLUMNS": true, "LINES": true,
}

var specialShellParams = map[string]bool{
	"?": true, "!": true, "#": true, "@": true, "*": true, "-": true,
	"$": true, "_": true,
	"0": true, "1": true, "2": true, "3": true, "4": true,
	"5": true, "6": true, "7": true, "8": true, "9": true,
}

var sensitiveSubstrings = []string{"key", "token", "secret", "password", "pass", "auth", "credential"}

func looksSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range sensitiveSubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// RedactCommand scrubs environment assignments and parameter expansions in
// cmd whose name is not in the safe allowlist: an assignment's value is
// replaced with redactionMarker, and an expansion's parameter name is
// rewritten to REDACTED. It never changes the command that is executed or
// stored, only a copy intended for logs. Redacting an already-redacted
// command is a no-op.
func RedactCommand(cmd string) string {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	prog, err := parser.Parse(strings.NewReader(cmd), "")
	if err != nil {
		return regexRedact(cmd)
	}

	syntax.Walk(prog, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.ParamExp:
			if n.Param != nil && !safeEnvVars[n.Param.Value] && !specialShellParams[n.Param.Value] {
				n.Param.Value = "REDACTED"
			}
		case *syntax.Assign:
			if n.Name != nil && !safeEnvVars[n.Name.Value] && n.Value != nil {
				n.Value.Parts = []syntax.WordPart{&syntax.Lit{Value: redactionMarker}}
			}
		}
		return true
	})

	var buf bytes.Buffer
	printer := syntax.NewPrinter(syntax.Indent(0))
	if err := printer.Print(&buf, prog); err != nil {
		return regexRedact(cmd)
	}
	return strings.TrimRight(buf.String(), "\n")
}

var (
	reLongFlag = regexp.MustCompile(`--([A-Za-z0-9_-]+)=(\S+)`)
	reAssign   = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)=(\S+)`)
)

// regexRedact is the fallback used when cmd fails to parse as shell syntax.
// It only touches --flag=value and NAME=value pairs whose name looks
// sensitive, leaving the rest of the command untouched.
func regexRedact(cmd string) string {
	cmd = reLongFlag.ReplaceAllStringFunc(cmd, func(m string) string {
		parts := reLongFlag.FindStringSubmatch(m)
		if !looksSensitive(parts[1]) {
			return m
		}
		return "--" + parts[1] + "=" + redactionMarker
	})

	cmd = reAssign.ReplaceAllStringFunc(cmd, func(m string) string {
		parts := reAssign.FindStringSubmatch(m)
		if safeEnvVars[parts[1]] || !looksSensitive(parts[1]) {
			return m
		}
		return parts[1] + "=" + redactionMarker
	})

	return cmd
}
