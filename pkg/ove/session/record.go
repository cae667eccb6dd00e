package session

import (
	"time"

	"laptudirm.com/x/gambit/pkg/ove/protocol"
)

// Actor identifies who produced a ply.
type Actor string

const (
	ActorOracle   Actor = "oracle"
	ActorOpponent Actor = "opponent"
)

// PlyRecord is the audit record of one half-move attempt. Exactly one
// applied record exists per completed ply; an oracle reply that failed
// validation is recorded with Applied false.
type PlyRecord struct {
	Actor   Actor             `json:"actor"`
	UCI     string            `json:"uci,omitempty"`
	SAN     string            `json:"san,omitempty"`
	Applied bool              `json:"applied"`
	Reason  string            `json:"reason,omitempty"`
	Raw     string            `json:"raw,omitempty"`
	Latency time.Duration     `json:"latency_ns,omitempty"`
	Meta    protocol.Metadata `json:"meta,omitempty"`
	Stages  []protocol.Stage  `json:"stages,omitempty"`
}
