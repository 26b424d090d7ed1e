package domain

import (
	"github.com/google/uuid"
)

type ConnectionType string

const (
	ConnectionTypeData    ConnectionType = "data"
	ConnectionTypeControl ConnectionType = "control"
	ConnectionTypeContext ConnectionType = "context"
)

// Connection is a directed edge between two components of the same
// workflow. The type tag is informational and does not alter scheduling.
type Connection struct {
	ID         string                 `json:"id"`
	SourceID   string                 `json:"source_id"`
	TargetID   string                 `json:"target_id"`
	SourcePort string                 `json:"source_port,omitempty"`
	TargetPort string                 `json:"target_port,omitempty"`
	Type       ConnectionType         `json:"type"`
	Config     map[string]interface{} `json:"config,omitempty"`
}

func NewConnection(sourceID, targetID string) *Connection {
	return &Connection{
		ID:       uuid.NewString(),
		SourceID: sourceID,
		TargetID: targetID,
		Type:     ConnectionTypeData,
	}
}
