package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"budgetik/internal/core"
	"budgetik/internal/ledger"
	"budgetik/internal/log"
	"budgetik/internal/stream"
)

type streamEvent struct {
	Account      core.Account       `json:"account"`
	Balance      decimal.Decimal    `json:"balance"`
	Transactions []core.Transaction `json:"transactions"`
}

// handleStream sends every snapshot of the account feed as a server-sent
// event. The subscription ends when the client disconnects, when the feed
// fails, or when the server shuts down.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	account, err := accountParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, fmt.Errorf("streaming unsupported by response writer"))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sub, err := s.streams.StreamFor(ctx, account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer sub.Close()

	logger := log.FromContext(ctx).WithComponent(log.ComponentStream)
	logger.InfoContext(ctx, "Live feed opened", log.FieldAccount, string(account))
	defer logger.InfoContext(ctx, "Live feed closed", log.FieldAccount, string(account))

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := s.clock.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	var id int
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopStreams:
			return
		case <-heartbeat.Chan():
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			id++
			if snap.Err != nil {
				logger.ErrorContext(ctx, "Live feed failed", log.FieldAccount, string(account), log.FieldError, snap.Err)
				_ = writeEvent(w, id, "error", errorBody{Error: "live feed failed"})
				flusher.Flush()
				return
			}
			if err := writeEvent(w, id, "snapshot", newStreamEvent(snap)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func newStreamEvent(snap stream.Snapshot) streamEvent {
	txs := snap.Transactions
	if txs == nil {
		txs = []core.Transaction{}
	}
	return streamEvent{
		Account:      snap.Account,
		Balance:      ledger.Balance(txs),
		Transactions: txs,
	}
}

// writeEvent writes one server-sent event with a single-line JSON payload.
func writeEvent(w io.Writer, id int, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, event, data)
	return err
}
