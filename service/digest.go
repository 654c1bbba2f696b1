package service

import (
	"fmt"
	"net/smtp"
	"os"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"barberbot/model"
	"barberbot/platform"
)

// DigestService mails the shop owner a daily summary of chat
// activity. It is scheduled from main together with the
// last_message_at reconcile pass.
type DigestService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewDigestService(db *gorm.DB) *DigestService {
	return &DigestService{db: db, logger: platform.Logger}
}

// SendDailyDigest counts the last 24h of activity and mails it to
// DIGEST_TO. Missing SMTP configuration skips the send instead of
// failing the cron run.
func (s *DigestService) SendDailyDigest() error {
	s.logger.Infof("[%s] Start scheduled task SendDailyDigest", "scheduled task")
	since := time.Now().Add(-24 * time.Hour)

	var conversations, messages int64
	if err := s.db.Model(&model.Conversation{}).
		Where("created_at >= ?", since).
		Count(&conversations).Error; err != nil {
		return fmt.Errorf("failed to count conversations: %w", err)
	}
	if err := s.db.Model(&model.Message{}).
		Where("created_at >= ?", since).
		Count(&messages).Error; err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}

	host := os.Getenv("SMTP_HOST")
	to := os.Getenv("DIGEST_TO")
	if host == "" || to == "" {
		s.logger.Infof("[%s] digest skipped: SMTP_HOST or DIGEST_TO not configured", "scheduled task")
		return nil
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")

	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = "BarberBot daily digest"
	e.Text = []byte(fmt.Sprintf(
		"Chat activity for the last 24 hours:\n\nNew conversations: %d\nNew messages: %d\n",
		conversations, messages))

	if err := e.Send(host+":"+port, smtp.PlainAuth("", user, password, host)); err != nil {
		return fmt.Errorf("failed to send digest mail: %w", err)
	}

	s.logger.Infof("[%s] Finished scheduled task SendDailyDigest: %d conversations, %d messages",
		"scheduled task", conversations, messages)
	return nil
}
