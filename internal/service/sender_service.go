package service

import (
	"fmt"
	"os"
	"strings"
	"time"

	"rentautopro/internal/entities"
	"rentautopro/internal/rental"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	log "github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SenderService delivers customer and staff notifications over SendGrid
// (email) and Twilio (SMS). Both channels degrade to a logged warning when
// their credentials are absent.
type SenderService struct{}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func SendEmailWithSendGrid(toEmailAddress, toName, subject, plainTextContent, htmlContent string) error {
	sendgridAPIKey := os.Getenv("SENDGRID_API_KEY")
	if sendgridAPIKey == "" {
		log.Warn("SENDGRID_API_KEY is not set, email will not be sent")
		return fmt.Errorf("SENDGRID_API_KEY is not set")
	}

	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		log.Warn("SENDGRID_FROM_EMAIL is not set, email will not be sent")
		return fmt.Errorf("SENDGRID_FROM_EMAIL is not set")
	}

	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "RentAutoPro"
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(toName, toEmailAddress)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	client := sendgrid.NewSendClient(sendgridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		log.WithError(err).Errorf("error sending email to %s via SendGrid", toEmailAddress)
		return fmt.Errorf("sending email through SendGrid: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		log.Infof("email sent to %s (subject: %s), status: %d", toEmailAddress, subject, response.StatusCode)
		return nil
	}

	log.Errorf("SendGrid returned status %d for %s: %s", response.StatusCode, toEmailAddress, response.Body)
	return fmt.Errorf("SendGrid returned non-success status %d: %s", response.StatusCode, response.Body)
}

func SendSMS(toNumber, messageBody string) error {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	fromNumber := os.Getenv("TWILIO_FROM_NUMBER")

	if accountSid == "" || authToken == "" || fromNumber == "" {
		log.Warn("Twilio credentials are not fully configured, SMS will not be sent")
		return fmt.Errorf("Twilio credentials are not fully configured")
	}

	if !strings.HasPrefix(toNumber, "+") {
		log.Warnf("destination number %q is not E.164, SMS may fail", toNumber)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSid,
		Password:   authToken,
		AccountSid: accountSid,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(fromNumber)
	params.SetBody(messageBody)

	resp, err := client.Api.CreateMessage(params)
	if err != nil {
		log.WithError(err).Errorf("error sending SMS to %s via Twilio", toNumber)
		return fmt.Errorf("sending SMS: %w", err)
	}

	if resp != nil && resp.Sid != nil {
		log.Infof("SMS sent to %s, message SID %s", toNumber, *resp.Sid)
	}
	return nil
}

// SendRentalEmail notifies the rental's customer of a lifecycle change.
// Delivery runs in the background so a slow provider never blocks the request.
func (s *SenderService) SendRentalEmail(detail entities.RentalDetail, status string) {
	if detail.Customer == nil || detail.Customer.Email == "" {
		return
	}

	vehicleLabel := ""
	if detail.Vehicle != nil {
		vehicleLabel = fmt.Sprintf("%s %s (plate %s)", detail.Vehicle.Make, detail.Vehicle.Model, detail.Vehicle.LicensePlate)
	}

	subject := fmt.Sprintf("Your RentAutoPro rental is %s", status)
	plainBody := fmt.Sprintf(
		"Hello %s,\n\nYour rental is now %s.\n\n"+
			"Rental details:\n"+
			"Vehicle: %s\n"+
			"Pick-up: %s\n"+
			"Return: %s\n"+
			"Total: %.2f\n\n"+
			"Thank you for choosing RentAutoPro.",
		detail.Customer.Name, status, vehicleLabel,
		detail.StartDate.Format(rental.DateLayout),
		detail.EndDate.Format(rental.DateLayout),
		detail.TotalAmount,
	)
	htmlBody := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your rental is now <b>%s</b>.</p>"+
			"<ul><li>Vehicle: %s</li><li>Pick-up: %s</li><li>Return: %s</li><li>Total: %.2f</li></ul>"+
			"<p>Thank you for choosing RentAutoPro.</p>",
		detail.Customer.Name, status, vehicleLabel,
		detail.StartDate.Format(rental.DateLayout),
		detail.EndDate.Format(rental.DateLayout),
		detail.TotalAmount,
	)

	go func(toEmail, toName, subject, plainBody, htmlBody string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, plainBody, htmlBody); err != nil {
			log.WithError(err).Errorf("rental %s email delivery failed", detail.ID)
		}
	}(detail.Customer.Email, detail.Customer.Name, subject, plainBody, htmlBody)
}

// SendRentalSMS sends a short lifecycle notice to the customer's phone, when
// one is on file.
func (s *SenderService) SendRentalSMS(detail entities.RentalDetail, status string) {
	if detail.Customer == nil || detail.Customer.Phone == "" {
		return
	}

	message := fmt.Sprintf("RentAutoPro: your rental is %s. Pick-up: %s. Details in your email.",
		status, detail.StartDate.Format(rental.DateLayout))

	if err := SendSMS(detail.Customer.Phone, message); err != nil {
		log.WithError(err).Errorf("rental %s SMS delivery failed", detail.ID)
	}
}

// SendMaintenanceDigest mails the list of maintenances coming due to a staff
// member.
func (s *SenderService) SendMaintenanceDigest(toEmail, toName string, upcoming []entities.MaintenanceDetail) {
	if toEmail == "" || len(upcoming) == 0 {
		return
	}

	var plain strings.Builder
	var html strings.Builder
	fmt.Fprintf(&plain, "Hello %s,\n\nThe following maintenances are due within the next 30 days:\n\n", toName)
	fmt.Fprintf(&html, "<p>Hello %s,</p><p>The following maintenances are due within the next 30 days:</p><ul>", toName)
	for _, m := range upcoming {
		label := m.Description
		if m.MaintenanceType != nil {
			label = m.MaintenanceType.Name
		}
		vehicle := m.VehicleID
		if m.Vehicle != nil {
			vehicle = fmt.Sprintf("%s %s (%s)", m.Vehicle.Make, m.Vehicle.Model, m.Vehicle.LicensePlate)
		}
		due := ""
		if m.NextDueDate != nil {
			due = m.NextDueDate.Format(rental.DateLayout)
		}
		fmt.Fprintf(&plain, "- %s: %s, due %s\n", vehicle, label, due)
		fmt.Fprintf(&html, "<li>%s: %s, due %s</li>", vehicle, label, due)
	}
	plain.WriteString("\nRentAutoPro fleet maintenance digest.")
	html.WriteString("</ul><p>RentAutoPro fleet maintenance digest.</p>")

	subject := fmt.Sprintf("Maintenance digest: %d services due soon", len(upcoming))
	go func(toEmail, toName, subject, plainBody, htmlBody string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, plainBody, htmlBody); err != nil {
			log.WithError(err).Error("maintenance digest delivery failed")
		}
	}(toEmail, toName, subject, plain.String(), html.String())
}

// SendInvoiceEmail notifies the customer that an invoice was issued for their
// completed rental.
func (s *SenderService) SendInvoiceEmail(toEmail, toName, invoiceNumber string, total float64, dueDate time.Time) {
	if toEmail == "" {
		return
	}

	subject := fmt.Sprintf("RentAutoPro invoice %s", invoiceNumber)
	plainBody := fmt.Sprintf(
		"Hello %s,\n\nInvoice %s for %.2f has been issued. Payment is due by %s.\n\nThank you for choosing RentAutoPro.",
		toName, invoiceNumber, total, dueDate.Format(rental.DateLayout))
	htmlBody := fmt.Sprintf(
		"<p>Hello %s,</p><p>Invoice <b>%s</b> for <b>%.2f</b> has been issued. Payment is due by %s.</p><p>Thank you for choosing RentAutoPro.</p>",
		toName, invoiceNumber, total, dueDate.Format(rental.DateLayout))

	go func(toEmail, toName, subject, plainBody, htmlBody string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, plainBody, htmlBody); err != nil {
			log.WithError(err).Errorf("invoice %s email delivery failed", invoiceNumber)
		}
	}(toEmail, toName, subject, plainBody, htmlBody)
}
