// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Holocron Contributors

package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/holocron-dev/holocron/internal/notify"
)

// ChangeEvent is the data payload of one "change" server-sent event.
type ChangeEvent struct {
	ID    string    `json:"id"`
	Kinds []string  `json:"kinds"`
	At    time.Time `json:"at"`
}

func changeEventOf(b notify.ChangeBatch) ChangeEvent {
	ev := ChangeEvent{ID: b.ID.String(), At: b.At, Kinds: make([]string, 0, len(b.Kinds))}
	for _, k := range b.Kinds {
		ev.Kinds = append(ev.Kinds, string(k))
	}
	return ev
}

func (s *Server) registerSSERoute() {
	s.router.Get("/api/v1/changes", s.handleChanges)

	// The stream needs raw http.ResponseWriter access, so it cannot use
	// Huma's handler signature. The chi route above serves it and the OpenAPI
	// entry here documents it.
	s.api.OpenAPI().AddOperation(&huma.Operation{
		OperationID: "change-stream",
		Method:      http.MethodGet,
		Path:        "/api/v1/changes",
		Summary:     "Stream committed import change batches via SSE",
		Description: "Each committed import emits one \"change\" event whose data names the entity kinds it replaced. A \": subscribed\" comment is sent once the stream is attached.",
		Tags:        []string{"changes"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Server-sent event stream",
				Content: map[string]*huma.MediaType{
					"text/event-stream": {
						Schema: &huma.Schema{
							Type:        "string",
							Description: "Server-sent event stream",
						},
					},
				},
			},
			"503": {Description: "Change stream closed"},
		},
	})
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	sub, err := s.services.changes.Subscribe()
	if err != nil {
		http.Error(w, `{"error":"change stream closed"}`, http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	// Streams outlive the server's write timeout.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": subscribed\n\n"); err != nil {
		return
	}
	_ = rc.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case batch, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(changeEventOf(batch))
			if err != nil {
				s.logger.Error("encoding change event", slog.Any("error", err))
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: change\ndata: %s\n\n", batch.ID, data); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}
