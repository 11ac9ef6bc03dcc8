package utils

import (
	"context"
	"fmt"

	"github.com/keighl/postmark"
	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"go-storefront/models"
)

// Mailer delivers a single email
type Mailer interface {
	SendEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// MailConfig selects and configures a Mailer
type MailConfig struct {
	Provider       string
	PostmarkToken  string
	SendgridAPIKey string
	Sender         string
}

// NewMailer returns the mailer for cfg.Provider. Unknown or empty providers
// fall back to logging messages.
func NewMailer(cfg MailConfig) (Mailer, error) {
	switch cfg.Provider {
	case "postmark":
		if cfg.PostmarkToken == "" {
			return nil, fmt.Errorf("POSTMARK_API_TOKEN is not set")
		}
		return NewPostmarkMailer(cfg.PostmarkToken, cfg.Sender), nil
	case "sendgrid":
		if cfg.SendgridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
		}
		return NewSendgridMailer(cfg.SendgridAPIKey, cfg.Sender), nil
	default:
		return LogMailer{}, nil
	}
}

// PostmarkMailer handles sending emails using Postmark
type PostmarkMailer struct {
	client *postmark.Client
	sender string
}

func NewPostmarkMailer(apiToken, sender string) *PostmarkMailer {
	return &PostmarkMailer{client: postmark.NewClient(apiToken, ""), sender: sender}
}

func (pm *PostmarkMailer) SendEmail(_ context.Context, toEmail, subject, htmlContent string) error {
	_, err := pm.client.SendEmail(postmark.Email{
		From:     pm.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Debug().Str("to", toEmail).Str("provider", "postmark").Msg("email sent")
	return nil
}

// SendgridMailer handles sending emails using SendGrid
type SendgridMailer struct {
	client *sendgrid.Client
	sender string
}

func NewSendgridMailer(apiKey, sender string) *SendgridMailer {
	return &SendgridMailer{client: sendgrid.NewSendClient(apiKey), sender: sender}
}

func (sm *SendgridMailer) SendEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail("", sm.sender),
		subject,
		mail.NewEmail("", toEmail),
		htmlContent,
		htmlContent,
	)
	resp, err := sm.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("failed to send email: sendgrid status %d", resp.StatusCode)
	}
	log.Debug().Str("to", toEmail).Str("provider", "sendgrid").Msg("email sent")
	return nil
}

// LogMailer writes messages to the log instead of delivering them
type LogMailer struct{}

func (LogMailer) SendEmail(_ context.Context, toEmail, subject, _ string) error {
	log.Info().Str("to", toEmail).Str("subject", subject).Msg("email not delivered, no mail provider configured")
	return nil
}

// OrderPlacedEmail builds the confirmation sent after checkout
func OrderPlacedEmail(user models.User, order models.Order) (string, string) {
	subject := "Order Confirmation"
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Items: <strong>$%s</strong><br>Shipping: <strong>$%s</strong><br>Tax: <strong>$%s</strong><br>Total Amount: <strong>$%s</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		user.Name,
		order.ID.Hex(),
		order.ItemsPrice.StringFixed(2),
		order.ShippingPrice.StringFixed(2),
		order.TaxPrice.StringFixed(2),
		order.TotalPrice.StringFixed(2),
		order.PaymentMethod,
	)
	return subject, content
}

// OrderPaidEmail builds the receipt sent once payment is recorded
func OrderPaidEmail(user models.User, order models.Order) (string, string) {
	subject := "Payment Received"
	paymentID := ""
	if order.PaymentResult != nil {
		paymentID = order.PaymentResult.ID
	}
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>We received your payment of <strong>$%s</strong> for order %s (payment ID: %s).<br><br>Thank you for shopping with us!",
		user.Name,
		order.TotalPrice.StringFixed(2),
		order.ID.Hex(),
		paymentID,
	)
	return subject, content
}

// OrderDeliveredEmail builds the delivery notice
func OrderDeliveredEmail(user models.User, order models.Order) (string, string) {
	subject := "Order Delivered"
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your order %s has been delivered.<br><br>Thank you for shopping with us!",
		user.Name,
		order.ID.Hex(),
	)
	return subject, content
}
