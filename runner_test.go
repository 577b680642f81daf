package main

import (
	"context"
	"strings"
	"testing"
	"time"
)

func drainUntilStatus(t *testing.T, r *TaskRunner, id TaskID, want string, timeout time.Duration) []OutputMessage {
	t.Helper()
	deadline := time.After(timeout)
	var msgs []OutputMessage
	for {
		select {
		case msg := <-r.Output():
			if msg.TaskID != id {
				continue
			}
			msgs = append(msgs, msg)
			if msg.Stream == StreamStatus && strings.HasPrefix(msg.Content, want) {
				return msgs
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %q, got %+v", want, msgs)
		}
	}
}

func TestRunTaskEchoHappyPath(t *testing.T) {
	r := NewTaskRunner(2)
	ctx := context.Background()
	id := r.SpawnLabeled(ctx, "echo hello-mux", "")

	msgs := drainUntilStatus(t, r, id, "completed", 5*time.Second)

	found := false
	for _, m := range msgs {
		if m.Stream == StreamOutput && strings.Contains(m.Content, "hello-mux") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected echoed output, got %+v", msgs)
	}
}

func TestRunTaskFailingCommand(t *testing.T) {
	r := NewTaskRunner(2)
	ctx := context.Background()
	id := r.SpawnLabeled(ctx, "exit 7", "")

	msgs := drainUntilStatus(t, r, id, "exited with code 7", 5*time.Second)
	if len(msgs) == 0 {
		t.Fatalf("expected at least a status message")
	}
}

func TestSpawnLabeledIncrementsTaskID(t *testing.T) {
	r := NewTaskRunner(2)
	ctx := context.Background()
	first := r.SpawnLabeled(ctx, "true", "a")
	second := r.SpawnLabeled(ctx, "true", "b")
	if second <= first {
		t.Fatalf("expected increasing task ids, got %d then %d", first, second)
	}
	drainUntilStatus(t, r, first, "completed", 5*time.Second)
	drainUntilStatus(t, r, second, "completed", 5*time.Second)
}

func TestCancelAllKillsRunningTask(t *testing.T) {
	r := NewTaskRunner(2)
	ctx := context.Background()
	id := r.SpawnLabeled(ctx, "sleep 30", "")

	// wait for it to actually start before cancelling
	deadline := time.After(5 * time.Second)
	for {
		select {
		case msg := <-r.Output():
			if msg.TaskID == id && msg.Stream == StreamStatus && msg.Content == "started" {
				goto started
			}
		case <-deadline:
			t.Fatalf("task never started")
		}
	}
started:
	r.CancelAll()
	deadline = time.After(5 * time.Second)
	for {
		select {
		case msg := <-r.Output():
			if msg.TaskID == id && msg.Stream == StreamStatus && msg.Content != "started" {
				return
			}
		case <-deadline:
			t.Fatalf("expected a terminal status after cancel")
		}
	}
}

func TestRuntimeStringFormatting(t *testing.T) {
	if got := runtimeString(1500 * time.Millisecond); got != "1.50s" {
		t.Fatalf("got %q", got)
	}
	if got := runtimeString(65200 * time.Millisecond); got != "1m5.2s" {
		t.Fatalf("got %q", got)
	}
}
