package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SnapshotInterval is how often the SSE endpoint emits a new snapshot.
const SnapshotInterval = 2 * time.Second

// ServeSSE streams periodic Snapshot payloads to w until ctx is done or the
// client disconnects. Each event is a standard SSE "data: <json>\n\n"
// record, matching the canonical stream format the rest of the gateway
// already writes.
func (r *Registry) ServeSSE(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("activity: response writer does not support flushing")
	}

	ticker := time.NewTicker(SnapshotInterval)
	defer ticker.Stop()

	if err := writeSnapshot(w, flusher, r.GetAll()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := writeSnapshot(w, flusher, r.GetAll()); err != nil {
				return err
			}
		}
	}
}

func writeSnapshot(w http.ResponseWriter, flusher http.Flusher, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling activity snapshot: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
