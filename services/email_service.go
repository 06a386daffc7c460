// services/email_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/empowerup/empowerup_backend/models"
)

// EmailService sends transactional mail. Sends are best effort: a mail
// failure is logged and never fails the operation that triggered it.
type EmailService struct {
	smtpHost  string
	smtpPort  int
	smtpUser  string
	smtpPass  string
	fromEmail string
}

func NewEmailService() *EmailService {
	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}
	fromEmail := os.Getenv("FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = os.Getenv("SMTP_USER")
	}
	return &EmailService{
		smtpHost:  os.Getenv("SMTP_HOST"),
		smtpPort:  port,
		smtpUser:  os.Getenv("SMTP_USER"),
		smtpPass:  os.Getenv("SMTP_PASS"),
		fromEmail: fromEmail,
	}
}

func (s *EmailService) send(to, subject, body string) error {
	if s.smtpHost == "" {
		return fmt.Errorf("SMTP is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.fromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.smtpHost, s.smtpPort, s.smtpUser, s.smtpPass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// SendWelcomeEmail greets a new user with their referral code.
func (s *EmailService) SendWelcomeEmail(user *models.User) {
	body := fmt.Sprintf(`
		<h2>Welcome to EmpowerUp, %s!</h2>
		<p>Your account has been created successfully.</p>
		<p>Your referral code is <strong>%s</strong>. Share it to start earning commissions.</p>
	`, user.Name, user.ReferralCode)

	if err := s.send(user.Email, "Welcome to EmpowerUp", body); err != nil {
		log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
	}
}

// SendWithdrawalDecisionEmail notifies the user of an admin's decision on
// their withdrawal request.
func (s *EmailService) SendWithdrawalDecisionEmail(user *models.User, withdrawal *models.Withdrawal) {
	var subject, body string
	if withdrawal.Status == models.WithdrawalStatusApproved {
		subject = "Your withdrawal has been approved"
		body = fmt.Sprintf(`
			<h2>Withdrawal Approved</h2>
			<p>Hi %s,</p>
			<p>Your withdrawal of <strong>%.2f</strong> via %s has been approved.</p>
			<p>Payout reference: <strong>%s</strong></p>
		`, user.Name, withdrawal.Amount, withdrawal.PaymentMethod, withdrawal.TransactionRef)
	} else {
		subject = "Your withdrawal has been rejected"
		body = fmt.Sprintf(`
			<h2>Withdrawal Rejected</h2>
			<p>Hi %s,</p>
			<p>Your withdrawal of <strong>%.2f</strong> was rejected and the amount has been returned to your available balance.</p>
			<p>Note: %s</p>
		`, user.Name, withdrawal.Amount, withdrawal.AdminNote)
	}

	if err := s.send(user.Email, subject, body); err != nil {
		log.Printf("Failed to send withdrawal decision email to %s: %v", user.Email, err)
	}
}
