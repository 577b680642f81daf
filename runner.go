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
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sync/semaphore"
)

// TaskID identifies one spawned command for the lifetime of a run.
type TaskID int64

// StreamType distinguishes a task's output lines from its lifecycle
// status text.
type StreamType int

const (
	StreamOutput StreamType = iota
	StreamStatus
)

// OutputMessage is one line a running (or just-finished) task produced.
type OutputMessage struct {
	TaskID TaskID
	Label  string
	Stream StreamType
	// Content is a raw output line for StreamOutput, or one of
	// "started" / "completed" / "exited with code N" / "error: <msg>"
	// for StreamStatus.
	Content string
}

const defaultTermCols = 80
const defaultTermRows = 24

type taskHandle struct {
	id   TaskID
	ptmx *os.File
	cmd  *exec.Cmd
}

// TaskRunner executes shell commands concurrently under real PTYs,
// bounded by a semaphore so a burst of parallel-expanded commands can't
// exhaust the host's process or file-descriptor limits.
type TaskRunner struct {
	sem *semaphore.Weighted
	out chan OutputMessage

	mu     sync.Mutex
	active map[TaskID]*taskHandle
	nextID TaskID
	cols   uint16
	rows   uint16
}

// NewTaskRunner creates a runner allowing at most maxConcurrent tasks to
// run at once; its output channel is bounded (capacity 256) so a fast
// producer blocks rather than growing memory without limit.
func NewTaskRunner(maxConcurrent int) *TaskRunner {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &TaskRunner{
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
		out:    make(chan OutputMessage, 256),
		active: make(map[TaskID]*taskHandle),
		cols:   defaultTermCols,
		rows:   defaultTermRows,
	}
}

// Output returns the channel every task's messages are delivered on.
func (r *TaskRunner) Output() <-chan OutputMessage {
	return r.out
}

// SpawnLabeled starts command under a new PTY labeled label (used for
// parallel-expanded commands so the output framer can tell them apart)
// and returns its TaskID immediately; the command itself runs in a new
// goroutine once a permit is available.
func (r *TaskRunner) SpawnLabeled(ctx context.Context, command, label string) TaskID {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.mu.Unlock()

	go r.runTask(ctx, id, command, label)
	return id
}

func (r *TaskRunner) runTask(ctx context.Context, id TaskID, command, label string) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		r.out <- OutputMessage{TaskID: id, Label: label, Stream: StreamStatus, Content: fmt.Sprintf("error: %v", err)}
		return
	}
	defer r.sem.Release(1)

	r.runTaskBlocking(ctx, id, command, label)
}

// runTaskBlocking runs one command to completion inside the calling
// goroutine, streaming its output line-by-line. runTask calls it once a
// semaphore permit is held.
func (r *TaskRunner) runTaskBlocking(ctx context.Context, id TaskID, command, label string) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		r.out <- OutputMessage{TaskID: id, Label: label, Stream: StreamStatus, Content: fmt.Sprintf("error: %v", err)}
		return
	}

	r.mu.Lock()
	r.active[id] = &taskHandle{id: id, ptmx: ptmx, cmd: cmd}
	cols, rows := r.cols, r.rows
	r.mu.Unlock()

	_ = pty.Setsize(ptmx, &pty.Winsize{Cols: cols, Rows: rows})

	r.out <- OutputMessage{TaskID: id, Label: label, Stream: StreamStatus, Content: "started"}

	scanner := bufio.NewScanner(ptmx)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		r.out <- OutputMessage{TaskID: id, Label: label, Stream: StreamOutput, Content: scanner.Text()}
	}

	waitErr := cmd.Wait()
	_ = ptmx.Close()

	r.mu.Lock()
	delete(r.active, id)
	r.mu.Unlock()

	status := "completed"
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			status = fmt.Sprintf("exited with code %d", exitErr.ExitCode())
		} else {
			status = fmt.Sprintf("error: %v", waitErr)
		}
	}
	r.out <- OutputMessage{TaskID: id, Label: label, Stream: StreamStatus, Content: status}
}

// ResizeAll propagates a terminal resize to every currently running PTY,
// and remembers the size for tasks spawned afterward.
func (r *TaskRunner) ResizeAll(cols, rows uint16) {
	r.mu.Lock()
	r.cols, r.rows = cols, rows
	handles := make([]*taskHandle, 0, len(r.active))
	for _, h := range r.active {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	for _, h := range handles {
		_ = pty.Setsize(h.ptmx, &pty.Winsize{Cols: cols, Rows: rows})
	}
}

// CancelAll kills every currently running task's child process. There is
// no per-task cancel: a double-press quit always means "stop everything
// and exit", so one bulk operation is all the runner needs.
func (r *TaskRunner) CancelAll() {
	r.mu.Lock()
	handles := make([]*taskHandle, 0, len(r.active))
	for _, h := range r.active {
		handles = append(handles, h)
	}
	r.active = make(map[TaskID]*taskHandle)
	r.mu.Unlock()

	for _, h := range handles {
		if h.cmd.Process != nil {
			_ = h.cmd.Process.Kill()
		}
	}
}

// runtimeString formats a task's elapsed duration per the boxed-output
// framing contract: under a minute is "%.2fs", at or above a minute is
// "%dm%.1fs".
func runtimeString(d time.Duration) string {
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%.2fs", secs)
	}
	minutes := int(secs) / 60
	remainder := secs - float64(minutes*60)
	return fmt.Sprintf("%dm%.1fs", minutes, remainder)
}
