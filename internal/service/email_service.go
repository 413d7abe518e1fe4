package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"swimschool/internal/config"
	"swimschool/internal/models"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService delivers notifications via Amazon SES
type EmailService struct {
	client    sesAPI
	fromEmail string
	fromName  string
	enabled   bool
	logger    *slog.Logger
}

// NewEmailService creates a new email service. Without SES_FROM_EMAIL the
// service is disabled and every send is a no-op.
func NewEmailService(ctx context.Context, cfg *config.Config) (*EmailService, error) {
	logger := slog.Default().With("component", "email")

	if cfg.SESFromEmail == "" {
		logger.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{logger: logger}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SESRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("Email service enabled", "from", cfg.SESFromEmail, "region", cfg.SESRegion)
	return newEmailService(sesv2.NewFromConfig(awsCfg), cfg.SESFromEmail, cfg.SESFromName, logger), nil
}

func newEmailService(client sesAPI, fromEmail, fromName string, logger *slog.Logger) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		logger:    logger,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// NotifyUser emails a notification to its recipient
func (s *EmailService) NotifyUser(ctx context.Context, user models.User, n models.Notification) error {
	if !s.enabled {
		s.logger.Debug("Skipping notification email", "user_id", user.ID, "kind", n.Kind)
		return nil
	}
	if user.Email == "" {
		return fmt.Errorf("user %d has no email address", user.ID)
	}

	name := strings.TrimSpace(user.FirstName)
	if name == "" {
		name = "there"
	}

	textBody := fmt.Sprintf("Hi %s,\n\n%s\n\n%s\n", name, n.Title, n.Body)
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <p>Hi %s,</p>
  <h2 style="color: #0077b6;">%s</h2>
  <p>%s</p>
</body>
</html>`, html.EscapeString(name), html.EscapeString(n.Title), html.EscapeString(n.Body))

	return s.sendEmail(ctx, user.Email, n.Title, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	s.logger.Info("Email sent successfully", "to", toEmail, "subject", subject, "message_id", aws.ToString(result.MessageId))
	return nil
}
