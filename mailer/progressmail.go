package mailer

import (
	"fmt"
	"log"
	"strings"

	"github.com/tgaisser/ocb/models"
	"github.com/tgaisser/ocb/store"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gorm.io/gorm"
)

// ProgressMailer sends periodic course-progress summaries to users whose
// settings opt in. Everything here is best effort: a failed send is logged and
// the run moves on.
type ProgressMailer struct {
	db     *gorm.DB
	client *sendgrid.Client
	sender string
	cron   *cron.Cron
}

// NewProgressMailer wires the mailer against the database and sendgrid.
func NewProgressMailer(db *gorm.DB, apiKey, sender string) *ProgressMailer {
	return &ProgressMailer{
		db:     db,
		client: sendgrid.NewSendClient(apiKey),
		sender: sender,
	}
}

// Start schedules the weekly and monthly report runs. Call Stop on shutdown.
func (m *ProgressMailer) Start() {
	m.cron = cron.New()
	// Monday 13:00 UTC for weekly reports, first of the month for monthly
	if _, err := m.cron.AddFunc("0 13 * * 1", func() { m.SendReports("weekly") }); err != nil {
		log.Printf("Failed to schedule weekly progress reports: %v", err)
	}
	if _, err := m.cron.AddFunc("0 13 1 * *", func() { m.SendReports("monthly") }); err != nil {
		log.Printf("Failed to schedule monthly progress reports: %v", err)
	}
	m.cron.Start()
}

// Stop halts scheduled runs.
func (m *ProgressMailer) Stop() {
	if m.cron != nil {
		m.cron.Stop()
	}
}

// SendReports mails a progress summary to every subscribed user on the given
// frequency. Users whose email we never learned are skipped.
func (m *ProgressMailer) SendReports(frequency string) {
	var settings []models.UserSettings
	err := m.db.Where("progress_email_frequency = ? AND email_status = ?",
		frequency, store.DefaultEmailStatus).
		Find(&settings).Error
	if err != nil {
		log.Printf("Progress report run (%s) failed to load settings: %v", frequency, err)
		return
	}

	sent := 0
	for _, s := range settings {
		email := m.lookupEmail(s.UserId)
		if email == "" {
			continue
		}
		if err := m.sendReport(s.UserId, email); err != nil {
			log.Printf("Progress report to %s failed: %v", email, err)
			continue
		}
		sent++
	}
	log.Printf("Progress report run (%s): %d of %d sent", frequency, sent, len(settings))
}

// lookupEmail resolves a user's address from the most recent sign-in record.
func (m *ProgressMailer) lookupEmail(userId string) string {
	var row models.SignupAnalytics
	err := m.db.Where("user_id = ? AND email <> ''", userId).
		Order("create_date desc").
		First(&row).Error
	if err != nil {
		return ""
	}
	return row.Email
}

func (m *ProgressMailer) sendReport(userId, email string) error {
	views, err := store.GetCoursesProgress(m.db, userId, "", false)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		return nil
	}

	var body strings.Builder
	body.WriteString("Here is where you stand in your courses:\n\n")
	for _, view := range views {
		state := fmt.Sprintf("%d%% complete", view.Progress)
		if view.Completed {
			state = "completed - congratulations!"
		}
		fmt.Fprintf(&body, "  %s: %s\n", view.CourseName, state)
	}
	body.WriteString("\nKeep going!\n")

	message := mail.NewSingleEmail(
		mail.NewEmail("Online Courses", m.sender),
		"Your course progress",
		mail.NewEmail("", email),
		body.String(),
		"",
	)
	resp, err := m.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
