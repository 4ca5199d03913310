package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"munaucollege_go/config"
	"munaucollege_go/database"
	"munaucollege_go/models"
)

// Payload is a notification ready for delivery. The same shape is stored in
// the Redis queue; the DB row is the source of truth. If Redis is down we fall
// back to a direct insert so notifications are never silently lost.
type Payload struct {
	UserIDs   []uint    `json:"user_ids"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	ActionURL string    `json:"action_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const redisListKey = "notifications:queue"

// Service exposes notification creation with optional Redis queue.
// If Redis is disabled/unavailable, performs direct DB insert.
type Service struct {
	db       *gorm.DB
	redis    *redis.Client
	useRedis bool
}

func NewService() *Service {
	return &Service{
		db:       database.GetDB(),
		redis:    database.GetRedisClient(),
		useRedis: config.AppConfig != nil && config.AppConfig.UseRedisNotifications && database.GetRedisClient() != nil,
	}
}

// NewServiceWithDB creates a service bound to an explicit connection, always
// inserting directly (no queue).
func NewServiceWithDB(db *gorm.DB) *Service {
	return &Service{db: db}
}

// New builds a notification payload for EnqueueOrCreate.
func New(typ, title, message, category, actionURL string) Payload {
	return Payload{Type: typ, Title: title, Message: message, Category: category, ActionURL: actionURL}
}

// PaymentReceived is the payload dispatched after a completed fee payment.
func PaymentReceived(amount, reference string) Payload {
	return New("payment_received", "Payment Received",
		fmt.Sprintf("We have received your payment of %s. Reference: %s", amount, reference),
		"finance", "/student/fees")
}

// AdmissionSubmitted confirms an application was received.
func AdmissionSubmitted(applicationNumber string) Payload {
	return New("admission_submitted", "Admission Application Submitted",
		fmt.Sprintf("Your admission application %s has been submitted successfully. You will be notified once it's reviewed.", applicationNumber),
		"admission", "/admission/tracking")
}

// AdmissionShortlisted congratulates a shortlisted applicant.
func AdmissionShortlisted(programName string) Payload {
	return New("admission_shortlisted", "Shortlisted for Admission",
		"Congratulations! You have been shortlisted for admission to "+programName,
		"admission", "/admission/tracking")
}

// AdmissionApproved tells an applicant their admission went through.
func AdmissionApproved() Payload {
	return New("admission_approved", "Admission Approved",
		"Congratulations! Your admission has been approved. Please proceed with the acceptance fee payment.",
		"admission", "/admission/tracking")
}

// AdmissionRejected delivers the rejection outcome.
func AdmissionRejected() Payload {
	return New("admission_rejected", "Application Status Update",
		"We regret to inform you that your application was not successful at this time. You may reapply in the next admission cycle.",
		"admission", "/admission/tracking")
}

// StudentOnboarded welcomes a freshly created student account.
func StudentOnboarded() Payload {
	return New("student_onboarded", "Welcome to Munau College",
		"Welcome! Your student account has been created. Please log in and complete your profile.",
		"academic", "/student/profile")
}

// HostelRoomAllocated confirms a hostel room allocation.
func HostelRoomAllocated(roomNumber string) Payload {
	return New("hostel_allocated", "Hostel Room Allocated",
		fmt.Sprintf("You have been allocated room %s. Please check in at the hostel office.", roomNumber),
		"hostel", "/student/hostel")
}

// IDCardReadyForPickup tells a student their ID card can be collected.
func IDCardReadyForPickup(location string) Payload {
	msg := "Your student ID card is ready for pickup."
	if location != "" {
		msg = fmt.Sprintf("Your student ID card is ready for pickup at %s.", location)
	}
	return New("id_card_ready", "ID Card Ready", msg, "general", "/student/id-card")
}

// CourseResultPublished tells a student a result has been released.
func CourseResultPublished(courseCode string) Payload {
	return New("result_published", "Result Published",
		fmt.Sprintf("Your result for %s has been published. Check your portal for details.", courseCode),
		"academic", "/student/results")
}

// NewApplicationForAdmins alerts the back office about a submitted application.
func NewApplicationForAdmins(applicantName, programName string) Payload {
	return New("new_application", "New Admission Application",
		fmt.Sprintf("%s has submitted an application for %s", applicantName, programName),
		"admission", "/admin/admissions")
}

// EnqueueOrCreate stores notifications using the Redis queue if enabled, else
// direct insert.
func (s *Service) EnqueueOrCreate(userIDs []uint, n Payload) error {
	if len(userIDs) == 0 {
		return errors.New("no user ids")
	}
	n.UserIDs = userIDs
	n.CreatedAt = time.Now().UTC()

	if s.useRedis {
		b, err := json.Marshal(n)
		if err != nil {
			return err
		}
		if err = s.redis.RPush(context.Background(), redisListKey, b).Err(); err == nil {
			return nil // queued successfully
		}
		logrus.WithError(err).Warn("notification queue push failed, falling back to direct insert")
	}

	return s.createDirect(userIDs, n)
}

// createDirect writes directly to DB (used by worker or fallback).
func (s *Service) createDirect(userIDs []uint, n Payload) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := time.Now()
	notifs := make([]models.Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		notifs = append(notifs, models.Notification{
			UserID:    uid,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Category:  n.Category,
			ActionURL: n.ActionURL,
			Read:      false,
			SentAt:    &now,
		})
	}
	return s.db.Create(&notifs).Error
}

// StartWorker starts a background worker polling the Redis queue and flushing
// batches to the database.
func (s *Service) StartWorker(stop <-chan struct{}) {
	if !s.useRedis {
		logrus.Info("redis notifications disabled; worker not started")
		return
	}
	go func() {
		logrus.Info("redis notification worker started")
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		ctx := context.Background()
		batchSize := 200
		for {
			select {
			case <-stop:
				logrus.Info("notification worker stopping")
				return
			case <-ticker.C:
				s.flushBatch(ctx, batchSize)
			}
		}
	}()
}

// flushBatch polls the redis queue and processes notifications in batches.
func (s *Service) flushBatch(ctx context.Context, batchSize int) {
	if s.redis == nil {
		return
	}
	for i := 0; i < 5; i++ { // up to 5 sub-batches per tick
		vals, err := s.redis.LRange(ctx, redisListKey, 0, int64(batchSize-1)).Result()
		if err != nil || len(vals) == 0 {
			return
		}
		// Trim immediately to avoid duplicates (best-effort)
		if err = s.redis.LTrim(ctx, redisListKey, int64(len(vals)), -1).Err(); err != nil {
			logrus.WithError(err).Warn("notification queue trim failed")
		}
		for _, raw := range vals {
			var q Payload
			if err := json.Unmarshal([]byte(raw), &q); err != nil {
				continue
			}
			if err := s.createDirect(q.UserIDs, q); err != nil {
				logrus.WithError(err).Error("notification DB insert failed")
			}
		}
		if len(vals) < batchSize {
			return
		}
	}
}
