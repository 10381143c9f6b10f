package utils

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// Mailer sends transactional email through SendGrid. Without an API key
// messages are written to the log instead.
type Mailer struct {
	apiKey  string
	appName string
	from    *sgmail.Email
}

func NewMailer(apiKey, appName, fromEmail string) *Mailer {
	return &Mailer{apiKey: apiKey, appName: appName, from: sgmail.NewEmail(appName, fromEmail)}
}

// SendEmail delivers one html message
func (m *Mailer) SendEmail(toName, toEmail, subject, htmlBody string) error {
	if toEmail == "" {
		return fmt.Errorf("no recipient address")
	}
	if m.apiKey == "" {
		log.Printf("--- Email (console) ---\nTo: %s <%s>\nSubject: %s\n%s\n--- End Email ---", toName, toEmail, subject, htmlBody)
		return nil
	}

	p := sgmail.NewPersonalization()
	p.Subject = "[" + m.appName + "] " + subject
	p.AddTos(sgmail.NewEmail(toName, toEmail))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(sgmail.NewContent("text/html", htmlBody))

	req := sendgrid.GetRequest(m.apiKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := sendgrid.API(req)
	if err != nil {
		log.Printf("Error sending email to %s: %v", toEmail, err)
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		log.Printf("SendGrid rejected email to %s: %d %s", toEmail, res.StatusCode, res.Body)
		return fmt.Errorf("sendgrid status %d", res.StatusCode)
	}
	return nil
}

func (m *Mailer) getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #FFF8EE; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #E8590C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #333333; line-height: 1.6; }
			.footer { background-color: #FFF8EE; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #E8590C; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">&copy; %d %s</div>
		</div>
	</body>
	</html>
	`, m.appName, title, bodyContent, time.Now().Year(), m.appName)
}

// SendPasswordResetEmail mails the reset link, valid for validFor
func (m *Mailer) SendPasswordResetEmail(name, email, link string, validFor time.Duration) error {
	body := fmt.Sprintf(`<p>Dear %s,</p>
		<p>We received a request to reset your password. The link below is valid for %d minutes.</p>
		<a href="%s" class="btn">Reset Password</a>
		<p>If you did not ask for this, you can ignore this email.</p>`, name, int(validFor.Minutes()), link)
	return m.SendEmail(name, email, "Reset your password", m.getEmailTemplate("Password Reset", body))
}

// SendSubscriptionExpiryReminder warns a learner that the monthly plan ends soon
func (m *Mailer) SendSubscriptionExpiryReminder(name, email string, endDate time.Time) error {
	body := fmt.Sprintf(`<p>Dear %s,</p>
		<p>Your monthly subscription ends on <strong>%s</strong>.</p>
		<p>Renew before then to keep every lesson unlocked.</p>`, name, endDate.Format("January 2, 2006"))
	return m.SendEmail(name, email, "Your subscription is ending soon", m.getEmailTemplate("Subscription Ending Soon", body))
}
