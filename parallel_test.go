package main

import (
	"reflect"
	"testing"
)

func TestParseRangeCommaList(t *testing.T) {
	got, ok := ParseRange("a,b,c")
	want := []string{"a", "b", "c"}
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, %v want %v, true", got, ok, want)
	}
}

func TestParseRangeNumeric(t *testing.T) {
	got, ok := ParseRange("1-3")
	want := []string{"1", "2", "3"}
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, %v want %v, true", got, ok, want)
	}
}

func TestParseRangeZeroPadded(t *testing.T) {
	got, ok := ParseRange("08-10")
	want := []string{"08", "09", "10"}
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, %v want %v, true", got, ok, want)
	}
}

func TestParseRangeDescendingFails(t *testing.T) {
	_, ok := ParseRange("5-1")
	if ok {
		t.Fatalf("expected descending range to fail parsing")
	}
}

func TestParseRangeNonNumericDashFails(t *testing.T) {
	_, ok := ParseRange("foo-bar")
	if ok {
		t.Fatalf("expected non-numeric dash range to fail parsing")
	}
}

func TestParseRangeSingleton(t *testing.T) {
	got, ok := ParseRange("prod")
	want := []string{"prod"}
	if !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, %v want %v, true", got, ok, want)
	}
}

func TestParseParallelRequiresLeadingBracket(t *testing.T) {
	_, ok := ParseParallel("echo hi")
	if ok {
		t.Fatalf("expected parse failure without leading bracket")
	}
}

func TestParseParallelDescendingRangeFails(t *testing.T) {
	_, ok := ParseParallel("[shard=5-1] cmd")
	if ok {
		t.Fatalf("expected parse failure for a descending range")
	}
}

func TestParseParallelZipMismatchFails(t *testing.T) {
	_, ok := ParseParallel("[a=1,2 b=1,2,3] echo {a} {b}")
	if ok {
		t.Fatalf("expected parse failure for mismatched zip lengths")
	}
}

func TestParseParallelSingleGroup(t *testing.T) {
	parsed, ok := ParseParallel("[host=1-3] ping host{host}")
	if !ok {
		t.Fatalf("expected parse success")
	}
	if parsed.Template != "ping host{host}" {
		t.Fatalf("unexpected template: %q", parsed.Template)
	}
	if len(parsed.Groups) != 1 || len(parsed.Groups[0].Params) != 1 {
		t.Fatalf("unexpected groups: %+v", parsed.Groups)
	}
}

func TestExpandCrossProductAcrossGroups(t *testing.T) {
	parsed, ok := ParseParallel("[env=dev,prod] [region=us,eu] deploy {env} {region}")
	if !ok {
		t.Fatalf("expected parse success")
	}
	expanded := parsed.Expand()
	if len(expanded) != 4 {
		t.Fatalf("expected 4 combinations, got %d: %+v", len(expanded), expanded)
	}
}

func TestExpandZipWithinGroup(t *testing.T) {
	parsed, ok := ParseParallel("[name=a,b port=1,2] echo {name}:{port}")
	if !ok {
		t.Fatalf("expected parse success")
	}
	expanded := parsed.Expand()
	if len(expanded) != 2 {
		t.Fatalf("expected 2 combinations (zipped), got %d: %+v", len(expanded), expanded)
	}
	if expanded[0].Command != "echo a:1" || expanded[1].Command != "echo b:2" {
		t.Fatalf("unexpected expansion: %+v", expanded)
	}
}

func TestExpandBareBraceSingleGroupSingleParam(t *testing.T) {
	parsed, ok := ParseParallel("[n=1,2,3] echo {}")
	if !ok {
		t.Fatalf("expected parse success")
	}
	expanded := parsed.Expand()
	if len(expanded) != 3 {
		t.Fatalf("expected 3 combinations, got %d", len(expanded))
	}
	if expanded[0].Command != "echo 1" {
		t.Fatalf("expected bare {} substitution, got %q", expanded[0].Command)
	}
}

func TestExpandLabelsCarryParamValues(t *testing.T) {
	parsed, ok := ParseParallel("[env=dev] echo {env}")
	if !ok {
		t.Fatalf("expected parse success")
	}
	expanded := parsed.Expand()
	if expanded[0].Label != "[env=dev]" {
		t.Fatalf("unexpected label: %q", expanded[0].Label)
	}
}
