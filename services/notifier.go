package services

import (
	"fmt"
	"log"
	"time"

	"gopkg.in/gomail.v2"

	"azhome-server/config"
	"azhome-server/models"
)

// Mailer sends a single email.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through the configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}

type outboundEmail struct {
	to      string
	subject string
	body    string
}

// Notifier queues lifecycle emails off the request path. Enqueueing never
// blocks: when the queue is full the email is dropped and logged. Delivery
// failures are retried a few times, then logged and dropped; they never
// surface to the caller of a state transition.
type Notifier struct {
	mailer   Mailer
	queue    chan outboundEmail
	stopChan chan bool

	maxAttempts  int
	retryBackoff time.Duration
}

func NewNotifier(mailer Mailer) *Notifier {
	return &Notifier{
		mailer:       mailer,
		queue:        make(chan outboundEmail, 100),
		stopChan:     make(chan bool),
		maxAttempts:  3,
		retryBackoff: 2 * time.Second,
	}
}

// Start begins the delivery worker
func (n *Notifier) Start() {
	go n.run()
	log.Println("Notification worker started")
}

// Stop stops the delivery worker
func (n *Notifier) Stop() {
	n.stopChan <- true
	log.Println("Notification worker stopped")
}

func (n *Notifier) run() {
	for {
		select {
		case email := <-n.queue:
			n.deliver(email)
		case <-n.stopChan:
			return
		}
	}
}

func (n *Notifier) deliver(email outboundEmail) {
	var err error
	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		if err = n.mailer.Send(email.to, email.subject, email.body); err == nil {
			return
		}
		if attempt < n.maxAttempts {
			time.Sleep(time.Duration(attempt) * n.retryBackoff)
		}
	}
	log.Printf("Failed to send %q to %s after %d attempts: %v", email.subject, email.to, n.maxAttempts, err)
}

func (n *Notifier) enqueue(to, subject, body string) {
	if to == "" {
		return
	}
	select {
	case n.queue <- outboundEmail{to: to, subject: subject, body: body}:
	default:
		log.Printf("Notification queue full, dropping %q to %s", subject, to)
	}
}

// Welcome greets a newly registered user.
func (n *Notifier) Welcome(email, fullName string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>AZHome</strong>! We're thrilled to have you on board.</p>
		<p>Your account has been successfully created. You can now book trusted
		home-service professionals, track your bookings, and message workers
		directly from the app.</p>
		<p>Best regards,<br/><strong>The AZHome Team</strong></p>
	`, fullName)
	n.enqueue(email, "Welcome to AZHome", body)
}

// PasswordReset sends the one-time reset code.
func (n *Notifier) PasswordReset(email, code string) {
	body := fmt.Sprintf(`
		<p>Dear User,</p>
		<p>We received a request to reset the password for your AZHome account.</p>
		<p><strong>Your password reset code is:</strong></p>
		<h2>%s</h2>
		<p>This code expires in one hour and can only be used once. If you did
		not request a reset, please ignore this email.</p>
		<p>Thank you,<br/><strong>The AZHome Team</strong></p>
	`, code)
	n.enqueue(email, "Password Reset Code", body)
}

// BookingCreated tells the worker a new booking is waiting for them.
func (n *Notifier) BookingCreated(workerEmail, workerName, clientName string, b *models.Booking) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>%s has requested a <strong>%s</strong> booking for %s, %s&ndash;%s.</p>
		<p>Please accept or reject the request from your bookings page.</p>
		<p>Best regards,<br/><strong>The AZHome Team</strong></p>
	`, workerName, clientName, b.Service, b.Date.Format("2006-01-02"), b.StartTime, b.EndTime)
	n.enqueue(workerEmail, "New Booking Request", body)
}

// BookingAccepted tells the client their booking is confirmed.
func (n *Notifier) BookingAccepted(clientEmail, clientName string, b *models.Booking) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your <strong>%s</strong> booking for %s, %s&ndash;%s has been confirmed.</p>
		<p>Best regards,<br/><strong>The AZHome Team</strong></p>
	`, clientName, b.Service, b.Date.Format("2006-01-02"), b.StartTime, b.EndTime)
	n.enqueue(clientEmail, "Booking Confirmed", body)
}

// BookingRejected tells the client their booking was declined.
func (n *Notifier) BookingRejected(clientEmail, clientName string, b *models.Booking, reason string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Unfortunately your <strong>%s</strong> booking for %s, %s&ndash;%s was declined.</p>
		<p>Reason: %s</p>
		<p>The time slot has been released, so you can book another worker.</p>
		<p>Best regards,<br/><strong>The AZHome Team</strong></p>
	`, clientName, b.Service, b.Date.Format("2006-01-02"), b.StartTime, b.EndTime, reason)
	n.enqueue(clientEmail, "Booking Declined", body)
}

// BookingCancelled tells the worker the client withdrew.
func (n *Notifier) BookingCancelled(workerEmail, workerName string, b *models.Booking, reason string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>The <strong>%s</strong> booking for %s, %s&ndash;%s has been cancelled by the client.</p>
		<p>Reason: %s</p>
		<p>Best regards,<br/><strong>The AZHome Team</strong></p>
	`, workerName, b.Service, b.Date.Format("2006-01-02"), b.StartTime, b.EndTime, reason)
	n.enqueue(workerEmail, "Booking Cancelled", body)
}

// BookingCompleted tells the client the job is done.
func (n *Notifier) BookingCompleted(clientEmail, clientName string, b *models.Booking) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your <strong>%s</strong> booking for %s has been marked completed.</p>
		<p>We'd love to hear how it went. Consider leaving the worker a review.</p>
		<p>Best regards,<br/><strong>The AZHome Team</strong></p>
	`, clientName, b.Service, b.Date.Format("2006-01-02"))
	n.enqueue(clientEmail, "Booking Completed", body)
}

// BookingReminder nudges the client about an upcoming confirmed booking.
func (n *Notifier) BookingReminder(clientEmail, clientName string, b *models.Booking) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming <strong>%s</strong> booking on %s, %s&ndash;%s at %s.</p>
		<p>Best regards,<br/><strong>The AZHome Team</strong></p>
	`, clientName, b.Service, b.Date.Format("2006-01-02"), b.StartTime, b.EndTime, b.Address)
	n.enqueue(clientEmail, "Upcoming Booking Reminder", body)
}
