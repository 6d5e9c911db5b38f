// Package notify stores in-app notifications and, when the user can be reached and
// has not opted out, delivers them by email (SES) or SMS (SNS).
package notify

import (
	"context"
	"fmt"

	awsclient "chat-assistant/internal/common/aws"
	"chat-assistant/internal/common/config"
	"chat-assistant/internal/common/errors"
	"chat-assistant/internal/common/logger"
	"chat-assistant/internal/common/metrics"
	"chat-assistant/internal/models"
	"chat-assistant/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Delivery channels.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Notification types.
const (
	TypeBookingCreated = "booking_created"
	TypeBookingStatus  = "booking_status"
	TypeCategoryAlert  = "category_alert"
)

// Directory is the part of the repository the notifier needs.
type Directory interface {
	GetUserProfile(ctx context.Context, userID string) (*models.User, error)
	CreateNotification(ctx context.Context, userID string, in repository.NotificationInput) (*models.Notification, error)
}

type Options struct {
	EmailEnabled bool
	FromEmail    string
	SMSEnabled   bool
	SenderID     string
}

func OptionsFromConfig(cfg config.NotificationConfig) Options {
	return Options{
		EmailEnabled: cfg.Email.Enabled,
		FromEmail:    cfg.Email.FromEmail,
		SMSEnabled:   cfg.SMS.Enabled,
		SenderID:     cfg.SMS.SenderID,
	}
}

type Notifier struct {
	dir    Directory
	ses    awsclient.SESAPI
	sns    awsclient.SNSAPI
	opts   Options
	logger logger.Logger
}

// New builds a Notifier. A nil client disables its channel regardless of opts.
func New(dir Directory, sesClient awsclient.SESAPI, snsClient awsclient.SNSAPI, opts Options, log logger.Logger) *Notifier {
	return &Notifier{
		dir:    dir,
		ses:    sesClient,
		sns:    snsClient,
		opts:   opts,
		logger: logger.Component(log, "notifier"),
	}
}

// Notify stores the notification and then attempts delivery. Only the store write can
// fail the call; delivery failures are counted and logged.
func (n *Notifier) Notify(ctx context.Context, userID string, in repository.NotificationInput) (*models.Notification, error) {
	if userID == "" {
		return nil, errors.NewAuthRequiredError("notify")
	}
	stored, err := n.dir.CreateNotification(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	user, err := n.dir.GetUserProfile(ctx, userID)
	if err != nil {
		n.logger.Warn("profile lookup failed, skipping delivery", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return stored, nil
	}
	if user == nil {
		return stored, nil
	}

	if n.emailReady(user) {
		n.record(ChannelEmail, userID, n.sendEmail(ctx, user.Email, in.Title, in.Message))
	}
	if n.smsReady(user) {
		n.record(ChannelSMS, userID, n.sendSMS(ctx, user.Phone, in.Message))
	}
	return stored, nil
}

func (n *Notifier) emailReady(u *models.User) bool {
	return n.opts.EmailEnabled && n.ses != nil && u.Email != "" && u.EmailOptIn
}

func (n *Notifier) smsReady(u *models.User) bool {
	return n.opts.SMSEnabled && n.sns != nil && u.Phone != "" && u.SMSOptIn
}

func (n *Notifier) record(channel, userID string, err error) {
	if err != nil {
		metrics.NotificationsSent.WithLabelValues(channel, "failed").Inc()
		n.logger.Warn("notification delivery failed", map[string]interface{}{
			"channel": channel,
			"userId":  userID,
			"error":   errors.NewNotificationSendFailedError(channel, err).Details,
		})
		return
	}
	metrics.NotificationsSent.WithLabelValues(channel, "sent").Inc()
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.opts.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	}
	if n.opts.SenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(n.opts.SenderID),
			},
		}
	}
	_, err := n.sns.Publish(ctx, input)
	return err
}

// BookingCreated tells the client their request was received.
func (n *Notifier) BookingCreated(ctx context.Context, b models.Booking) (*models.Notification, error) {
	return n.Notify(ctx, b.ClientID, repository.NotificationInput{
		Type:    TypeBookingCreated,
		Title:   "Booking requested",
		Message: fmt.Sprintf("Your %s booking for %s is pending confirmation.", b.ServiceType, dateText(b)),
		Data:    map[string]interface{}{"bookingId": b.ID, "professionalId": b.ProfessionalID},
	})
}

// BookingStatusChanged tells the client the booking moved to a new status.
func (n *Notifier) BookingStatusChanged(ctx context.Context, b models.Booking) (*models.Notification, error) {
	return n.Notify(ctx, b.ClientID, repository.NotificationInput{
		Type:    TypeBookingStatus,
		Title:   "Booking " + string(b.Status),
		Message: fmt.Sprintf("Your %s booking for %s is now %s.", b.ServiceType, dateText(b), b.Status),
		Data:    map[string]interface{}{"bookingId": b.ID, "status": string(b.Status)},
	})
}

// CategoryAlert subscribes a user to new professionals in category ("Notify me").
func (n *Notifier) CategoryAlert(ctx context.Context, userID, category string) (*models.Notification, error) {
	return n.Notify(ctx, userID, repository.NotificationInput{
		Type:    TypeCategoryAlert,
		Title:   "We'll keep looking",
		Message: fmt.Sprintf("We'll let you know when a %s becomes available.", category),
		Data:    map[string]interface{}{"category": category},
	})
}

func dateText(b models.Booking) string {
	if b.AppointmentDate == nil {
		return "a date to be confirmed"
	}
	return b.AppointmentDate.Format("Jan 2, 2006 15:04")
}
