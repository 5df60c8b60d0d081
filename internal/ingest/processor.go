package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"stationuptime/internal/models"
)

// ReportMessage is the JSON frame a live charger pushes over the websocket.
type ReportMessage struct {
	ChargerID  uint32 `json:"charger_id"`
	StartNanos uint64 `json:"start_nanos"`
	EndNanos   uint64 `json:"end_nanos"`
	Up         bool   `json:"up"`
}

type ackMessage struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Processor validates incoming report frames and feeds the store. Implements
// the websocket MessageProcessor contract.
type Processor struct {
	store  *Store
	logger *zap.Logger
}

// NewProcessor builds processor.
func NewProcessor(store *Store, logger *zap.Logger) *Processor {
	return &Processor{store: store, logger: logger}
}

// Process parses one frame, applying the same validation the file parser
// applies, and replies with an accepted/rejected acknowledgement.
func (p *Processor) Process(_ context.Context, chargerID string, raw []byte) ([]byte, error) {
	var msg ReportMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return reject(fmt.Sprintf("malformed report frame: %v", err))
	}

	connID, err := strconv.ParseUint(chargerID, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("ingest: invalid connection charger id %q: %w", chargerID, err)
	}
	if msg.ChargerID != uint32(connID) {
		return reject(fmt.Sprintf("report charger %d does not match connection charger %d", msg.ChargerID, connID))
	}
	if msg.EndNanos < msg.StartNanos {
		return reject(fmt.Sprintf("report end %d before start %d", msg.EndNanos, msg.StartNanos))
	}

	p.store.Add(models.Report{
		ChargerID: msg.ChargerID,
		Start:     msg.StartNanos,
		End:       msg.EndNanos,
		Up:        msg.Up,
	})
	p.logger.Debug("report ingested",
		zap.Uint32("charger_id", msg.ChargerID),
		zap.Uint64("start_nanos", msg.StartNanos),
		zap.Uint64("end_nanos", msg.EndNanos),
		zap.Bool("up", msg.Up))

	return json.Marshal(ackMessage{Status: "accepted"})
}

func reject(reason string) ([]byte, error) {
	return json.Marshal(ackMessage{Status: "rejected", Error: reason})
}
