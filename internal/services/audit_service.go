package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/staybook/reservation-backend/internal/database"
	"github.com/staybook/reservation-backend/internal/models"
	"github.com/staybook/reservation-backend/internal/utils"
)

// Audit actions
const (
	AuditActionAccessDenied    = "access_denied"
	AuditActionBookingCreated  = "booking_created"
	AuditActionBookingCanceled = "booking_cancelled"
)

// AuditService writes security and booking events to audit_logs
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	Username   string                 // Acting user, "system" for background jobs
	Action     string                 // e.g. "access_denied", "booking_cancelled"
	EntityType string                 // e.g. "booking"
	EntityID   *uuid.UUID             // Affected entity, may be nil
	IPAddress  string                 // Client IP address
	UserAgent  string                 // Client user agent
	Details    map[string]interface{} // Stored as JSONB
}

// LogAccessDenied records an actor touching a resource they do not own
func (s *AuditService) LogAccessDenied(ctx context.Context, actor Actor, operation, target string, entityID *uuid.UUID) error {
	details := map[string]interface{}{
		"operation":   operation,
		"target":      target,
		"role":        actor.Role,
		"device_info": utils.ParseUserAgent(actor.UserAgent),
	}

	return s.logEvent(ctx, AuditEvent{
		Username:   actor.Username,
		Action:     AuditActionAccessDenied,
		EntityType: "booking",
		EntityID:   entityID,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
		Details:    details,
	})
}

// LogBookingEvent records a booking lifecycle event
func (s *AuditService) LogBookingEvent(ctx context.Context, actor Actor, action string, booking *models.Booking) error {
	details := map[string]interface{}{
		"request_id": booking.RequestID,
		"room_id":    booking.RoomID,
		"owner":      booking.Username,
		"status":     booking.Status,
		"start_date": booking.StartDate.String(),
		"end_date":   booking.EndDate.String(),
	}
	if actor.UserAgent != "" {
		details["device_info"] = utils.ParseUserAgent(actor.UserAgent)
	}

	id := booking.ID
	return s.logEvent(ctx, AuditEvent{
		Username:   actor.Username,
		Action:     action,
		EntityType: "booking",
		EntityID:   &id,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
		Details:    details,
	})
}

// logEvent is the internal method that writes to the audit_logs table
func (s *AuditService) logEvent(ctx context.Context, event AuditEvent) error {
	query := `
		INSERT INTO audit_logs (username, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query,
		event.Username,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		details,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}
