package mailer

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/Aryangurung1/HellooBuddy/pkg/config"
)

const supportAddress = "supporthellobuddy@gmail.com"

const (
	suspensionSubject    = "Account Suspension"
	reactivationSubject  = "Account Reactivation"
	deletionSubject      = "Your Account Has Been Deleted"
	rewardRevokedSubject = "Subscription Revoked"
)

// Mailer is the notification surface used by the user lifecycle services.
type Mailer interface {
	SendSuspensionNotice(to string) error
	SendReactivationNotice(to string) error
	SendAccountDeletionNotice(to string) error
	SendRewardNotice(to, subject, htmlBody string) error
	SendRewardRevokedNotice(to string) error
}

type dialer interface {
	DialAndSend(...*gomail.Message) error
}

// SMTPMailer delivers account notifications over SMTP.
type SMTPMailer struct {
	dialer dialer
	from   string
}

// NewSMTPMailer builds the mailer from SMTP configuration.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = cfg.Username
	}
	if from == "" {
		return nil, errors.New("smtp from address is required")
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}, nil
}

// NewWithDialer wires a custom dialer; used by tests.
func NewWithDialer(d dialer, from string) *SMTPMailer {
	return &SMTPMailer{dialer: d, from: from}
}

// SendSuspensionNotice informs the user their account was suspended.
func (m *SMTPMailer) SendSuspensionNotice(to string) error {
	body := fmt.Sprintf("Dear Valued User,\n\nWe regret to inform you that your account has been suspended due to a violation of our terms and conditions. If you believe this suspension is an error or you would like to appeal, please contact our support team at %s.\n\nThank you for your understanding.\n\nBest regards,\nThe Support Team", supportAddress)
	return m.sendText(to, suspensionSubject, body)
}

// SendReactivationNotice informs the user their account is active again.
func (m *SMTPMailer) SendReactivationNotice(to string) error {
	body := fmt.Sprintf("Dear Valued User,\n\nWe are pleased to inform you that your account has been successfully reactivated. You can now access all the features of your account as usual.\n\nIf you have any questions or require assistance, please do not hesitate to contact us at %s.\n\nBest regards,\nThe Support Team", supportAddress)
	return m.sendText(to, reactivationSubject, body)
}

// SendAccountDeletionNotice informs the user their account was removed.
func (m *SMTPMailer) SendAccountDeletionNotice(to string) error {
	body := "Dear user,\n\nYour account has been permanently deleted. If you have any questions, please contact support.\n\nThank you."
	return m.sendText(to, deletionSubject, body)
}

// SendRewardNotice delivers the admin-authored reward announcement.
func (m *SMTPMailer) SendRewardNotice(to, subject, htmlBody string) error {
	if strings.TrimSpace(subject) == "" {
		return errors.New("reward subject is required")
	}
	msg := m.newMessage(to, subject)
	msg.SetBody("text/html", htmlBody)
	return m.send(msg)
}

// SendRewardRevokedNotice informs the user their reward subscription ended.
func (m *SMTPMailer) SendRewardRevokedNotice(to string) error {
	msg := m.newMessage(to, rewardRevokedSubject)
	msg.SetBody("text/html", "<h1>Subscription Update</h1><p>Your reward subscription has been revoked.</p><p>If you have any questions, please contact support.</p>")
	return m.send(msg)
}

func (m *SMTPMailer) sendText(to, subject, body string) error {
	msg := m.newMessage(to, subject)
	msg.SetBody("text/plain", body)
	return m.send(msg)
}

func (m *SMTPMailer) newMessage(to, subject string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	return msg
}

func (m *SMTPMailer) send(msg *gomail.Message) error {
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
