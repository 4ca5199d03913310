package utils

import (
	"strings"
	"time"

	"munaucollege_go/models"
)

// Compact representations used across APIs
type UserShort struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

type NotificationDTO struct {
	ID        uint       `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UserID    uint       `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Category  string     `json:"category"`
	ActionURL string     `json:"action_url,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	User      UserShort  `json:"user"`
}

// ToNotificationDTO maps a models.Notification to the compact DTO.
// Caller should have preloaded User when possible.
func ToNotificationDTO(n models.Notification) NotificationDTO {
	us := UserShort{
		ID:        n.User.ID,
		FirstName: n.User.FirstName,
		LastName:  n.User.LastName,
		Email:     n.User.Email,
	}
	if us.FirstName == "" && n.User.Email != "" {
		// fall back to the email local-part when no profile name exists
		us.FirstName = strings.Split(n.User.Email, "@")[0]
	}

	return NotificationDTO{
		ID:        n.ID,
		CreatedAt: n.CreatedAt,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Category:  n.Category,
		ActionURL: n.ActionURL,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		SentAt:    n.SentAt,
		User:      us,
	}
}
