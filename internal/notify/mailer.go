package notify

import (
	"context"
	"fmt"
	"strings"

	"eventhub/internal/config"
	"eventhub/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Mailer delivers transactional email through SMTP.
type Mailer struct {
	dialer     *gomail.Dialer
	from       string
	adminEmail string
	logger     *zerolog.Logger
}

func NewMailer(cfg config.SMTPConfig, logger *zerolog.Logger) *Mailer {
	return &Mailer{
		dialer:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:       cfg.From,
		adminEmail: cfg.AdminEmail,
		logger:     logger,
	}
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	m.logger.Debug().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

// SendBookingNotification emails the admin about a freshly created booking.
func (m *Mailer) SendBookingNotification(ctx context.Context, details *models.BookingDetails) error {
	if m.adminEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("New booking %s for %s", details.ConfirmationNumber, details.EventTitle)
	body := bookingTable(details, "A new booking has been placed and is awaiting payment.")
	return m.send(ctx, m.adminEmail, subject, body)
}

// SendBookingConfirmation emails the customer on creation and again after
// payment. The wording follows the booking's current status because details
// are reloaded at delivery time.
func (m *Mailer) SendBookingConfirmation(ctx context.Context, details *models.BookingDetails) error {
	subject := fmt.Sprintf("Booking received: %s", details.EventTitle)
	note := "we have received your booking. Complete the payment to confirm your spot."
	if details.Status == models.StatusConfirmed {
		subject = fmt.Sprintf("Booking confirmed: %s", details.EventTitle)
		note = "your booking is confirmed. Keep your confirmation number handy at the venue."
	}
	body := bookingTable(details, fmt.Sprintf("Hi %s, %s", contactName(details), note))
	return m.send(ctx, contactEmail(details), subject, body)
}

// SendBookingCancellation emails the customer when a booking is cancelled,
// including auto-cancellations after a failed capacity check.
func (m *Mailer) SendBookingCancellation(ctx context.Context, details *models.BookingDetails) error {
	subject := fmt.Sprintf("Booking cancelled: %s", details.EventTitle)
	note := "Your booking has been cancelled."
	if details.PaymentStatus == models.PaymentRefunded {
		note = "Your booking has been cancelled and any payment will be refunded."
	}
	body := bookingTable(details, fmt.Sprintf("Hi %s, %s", contactName(details), note))
	return m.send(ctx, contactEmail(details), subject, body)
}

// SendPasswordReset emails a single-use reset link.
func (m *Mailer) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>You requested a password reset. The link below is valid for 10 minutes:</p>
<p><a href="%s">%s</a></p>
<p>If you did not request this, you can safely ignore this email.</p>`,
		name, resetURL, resetURL)
	return m.send(ctx, email, "Password reset request", body)
}

func contactName(details *models.BookingDetails) string {
	if details.ContactInfo.Name != "" {
		return details.ContactInfo.Name
	}
	return details.UserName
}

func contactEmail(details *models.BookingDetails) string {
	if details.ContactInfo.Email != "" {
		return details.ContactInfo.Email
	}
	return details.UserEmail
}

func bookingTable(details *models.BookingDetails, intro string) string {
	var b strings.Builder
	b.WriteString("<p>" + intro + "</p>")
	b.WriteString("<table>")
	row := func(k, v string) {
		b.WriteString(fmt.Sprintf("<tr><td><b>%s</b></td><td>%s</td></tr>", k, v))
	}
	row("Confirmation number", details.ConfirmationNumber)
	row("Event", details.EventTitle)
	row("Date", details.EventDate.Format("02.01.2006 15:04"))
	row("Location", details.EventLocation)
	row("Attendees", fmt.Sprintf("%d", details.Attendees))
	if details.DecorationPackage != models.PackageNone {
		row("Decoration", models.DecorationPackageNames[details.DecorationPackage])
	}
	row("Total", fmt.Sprintf("%.2f", details.TotalAmount))
	row("Status", details.Status)
	b.WriteString("</table>")
	return b.String()
}
