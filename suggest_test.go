package main

import "testing"

func TestParseCommandPrefixesAndArgs(t *testing.T) {
	parsed := ParseCommand("git remote add --fetch origin")
	if len(parsed.Prefixes) != 3 || parsed.Prefixes[0] != "git" || parsed.Prefixes[2] != "add" {
		t.Fatalf("unexpected prefixes: %v", parsed.Prefixes)
	}
	if len(parsed.Args) != 1 || parsed.Args[0].Name != "--fetch" || parsed.Args[0].Value != "origin" || !parsed.Args[0].HasValue {
		t.Fatalf("unexpected args: %+v", parsed.Args)
	}
}

func TestParseCommandBooleanFlag(t *testing.T) {
	parsed := ParseCommand("docker ps --all")
	if len(parsed.Args) != 1 || parsed.Args[0].Name != "--all" || parsed.Args[0].HasValue {
		t.Fatalf("unexpected args: %+v", parsed.Args)
	}
}

func TestParseCommandEqualsForm(t *testing.T) {
	parsed := ParseCommand("kubectl get pods --namespace=prod")
	if len(parsed.Args) != 1 || parsed.Args[0].Name != "--namespace" || parsed.Args[0].Value != "prod" {
		t.Fatalf("unexpected args: %+v", parsed.Args)
	}
}

func TestSplitInputTrailingSpace(t *testing.T) {
	completed, partial := SplitInput("git commit ")
	if completed != "git commit" || partial != "" {
		t.Fatalf("got completed=%q partial=%q", completed, partial)
	}
}

func TestSplitInputMidWord(t *testing.T) {
	completed, partial := SplitInput("git comm")
	if completed != "git" || partial != "comm" {
		t.Fatalf("got completed=%q partial=%q", completed, partial)
	}
}

func TestSplitInputMultiWordPartial(t *testing.T) {
	completed, partial := SplitInput("git commit -m")
	if completed != "git commit" || partial != "-m" {
		t.Fatalf("got completed=%q partial=%q", completed, partial)
	}
}

func TestAnalyzeCompletedEmptyExpectsCommand(t *testing.T) {
	ctx := analyzeCompleted(ParseCommand(""), func(string) bool { return false })
	if ctx.NextExpected != ExpectCommand {
		t.Fatalf("expected ExpectCommand, got %v", ctx.NextExpected)
	}
}

func TestAnalyzeCompletedPendingValue(t *testing.T) {
	parsed := ParseCommand("docker run --name")
	ctx := analyzeCompleted(parsed, func(name string) bool { return name == "--name" })
	if ctx.NextExpected != ExpectValue || ctx.ValueArgName != "--name" {
		t.Fatalf("unexpected ctx: %+v", ctx)
	}
}

func TestAnalyzeCompletedSubcommand(t *testing.T) {
	ctx := analyzeCompleted(ParseCommand("git"), func(string) bool { return false })
	if ctx.NextExpected != ExpectSubcommand {
		t.Fatalf("expected ExpectSubcommand, got %v", ctx.NextExpected)
	}
}

func TestSuggestionEngineSuggestsArgsInContext(t *testing.T) {
	engine := NewSuggestionEngine([]IndexedCommand{
		{Command: "docker run --name web --rm", Frequency: 5},
		{Command: "docker run --name api --rm", Frequency: 3},
	})

	suggestions := engine.Suggest("docker run --", nil, 5)
	found := false
	for _, s := range suggestions {
		if s.Text == "--name" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected --name suggestion, got %+v", suggestions)
	}
}

func TestSuggestionEngineSuggestsArgValues(t *testing.T) {
	engine := NewSuggestionEngine([]IndexedCommand{
		{Command: "kubectl get pods --namespace=prod", Frequency: 4},
		{Command: "kubectl get pods --namespace=staging", Frequency: 1},
	})

	suggestions := engine.Suggest("kubectl get pods --namespace ", nil, 5)
	if len(suggestions) == 0 {
		t.Fatalf("expected value suggestions, got none")
	}
	if suggestions[0].Text != "prod" {
		t.Fatalf("expected prod to rank first, got %+v", suggestions)
	}
}

func TestSuggestionEngineIndexCommandIncremental(t *testing.T) {
	engine := NewSuggestionEngine(nil)
	engine.IndexCommand("terraform apply --auto-approve")
	if !engine.argTakesValue("--auto-approve") && len(engine.argIndex[prefixKey([]string{"terraform", "apply"})]) == 0 {
		t.Fatalf("expected freshly indexed arg to be present")
	}
}
