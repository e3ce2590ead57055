// backend/shared/go-models/audit_log.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

type AuditTargetType string

const (
	TargetBuilding            AuditTargetType = "BUILDING"
	TargetUnit                AuditTargetType = "UNIT"
	TargetComponent           AuditTargetType = "COMPONENT"
	TargetMaintenanceTask     AuditTargetType = "MAINTENANCE_TASK"
	TargetServiceProvider     AuditTargetType = "SERVICE_PROVIDER"
	TargetServiceRequest      AuditTargetType = "SERVICE_REQUEST"
	TargetExpense             AuditTargetType = "EXPENSE"
	TargetUser                AuditTargetType = "USER"
	TargetContingencyDocument AuditTargetType = "CONTINGENCY_DOCUMENT"
)

// AuditLog records privileged mutations made by admins.
type AuditLog struct {
	ID         uuid.UUID        `json:"id"`
	ActorID    uuid.UUID        `json:"actor_id"`
	ActorRole  RoleType         `json:"actor_role"`
	Action     AuditAction      `json:"action"`
	TargetID   uuid.UUID        `json:"target_id"`
	TargetType AuditTargetType  `json:"target_type"`
	Details    *json.RawMessage `json:"details,omitempty"` // JSONB field for cascade counts etc.
	CreatedAt  time.Time        `json:"created_at"`
}
