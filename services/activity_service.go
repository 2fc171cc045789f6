package services

import (
	"context"
	"encoding/json"
	"log"

	"agroterms/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Broadcaster pushes messages to live listeners.
type Broadcaster interface {
	Broadcast(messageType string, payload interface{})
}

type ActivityService struct {
	db  *gorm.DB
	hub Broadcaster
}

func NewActivityService(db *gorm.DB, hub Broadcaster) *ActivityService {
	return &ActivityService{db: db, hub: hub}
}

type ActivityEntry struct {
	Action     string
	EntityType string
	EntityID   string
	User       string
	IPAddress  string
	Details    interface{}
}

// Log records an audit entry and announces it on the live feed. Failures are
// logged; the audit trail never fails the request that triggered it.
func (s *ActivityService) Log(ctx context.Context, entry ActivityEntry) {
	user := entry.User
	if user == "" {
		user = "anonymous"
	}

	activity := models.Activity{
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		User:       user,
		IPAddress:  entry.IPAddress,
	}
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			log.Printf("Error marshaling activity details for %s: %v", entry.Action, err)
		} else {
			activity.Details = datatypes.JSON(raw)
		}
	}

	if err := s.db.WithContext(ctx).Create(&activity).Error; err != nil {
		log.Printf("Error logging activity %s: %v", entry.Action, err)
		return
	}

	if s.hub != nil {
		s.hub.Broadcast("activity", activity)
	}
}

func (s *ActivityService) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&activities).Error
	return activities, err
}
