package utils

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// SSEJob is one named unit of work for the parallel fan-out. Run does the
// whole provider round-trip and returns either a payload or an error.
type SSEJob struct {
	Name string
	Run  func(ctx context.Context) (any, error)
}

// SSEEvent is one record on the stream: a payload or an error, never both.
type SSEEvent struct {
	API      string `json:"api"`
	Response any    `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// FanOut runs every job concurrently and delivers each job's event the
// moment it completes, in completion order. Every job yields exactly one
// event; a panicking or failing job becomes an error event rather than
// taking the stream down. The channel closes once all jobs have reported,
// which is the stream's termination signal.
func FanOut(ctx context.Context, jobs []SSEJob) <-chan SSEEvent {
	events := make(chan SSEEvent, len(jobs))

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(j SSEJob) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[SSE] job %s panicked: %v", j.Name, r)
					events <- SSEEvent{API: j.Name, Error: fmt.Sprintf("%v", r)}
				}
			}()

			response, err := j.Run(ctx)
			if err != nil {
				events <- SSEEvent{API: j.Name, Error: err.Error()}
				return
			}
			events <- SSEEvent{API: j.Name, Response: response}
		}(job)
	}

	go func() {
		wg.Wait()
		close(events)
	}()

	return events
}

// WriteSSE drains the event channel onto the wire in the text/event-stream
// framing, flushing after every event so the client sees each provider's
// result as soon as it lands. Returns the number of events written.
func WriteSSE(w *bufio.Writer, events <-chan SSEEvent) int {
	written := 0
	for ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			data, _ = json.Marshal(SSEEvent{API: ev.API, Error: "failed to encode event"})
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			// client went away; keep draining so every job still completes
			log.Printf("[SSE] client disconnected: %v", err)
			continue
		}
		if err := w.Flush(); err != nil {
			log.Printf("[SSE] flush failed: %v", err)
			continue
		}
		written++
	}
	return written
}
