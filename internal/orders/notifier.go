package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	awsclient "swaad-chat/internal/common/aws"
	apperrors "swaad-chat/internal/common/errors"
	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/common/metrics"
	"swaad-chat/internal/common/validation"
	"swaad-chat/internal/models"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	countryCode = "+91"
)

// Notifier tells the customer their order went through.
type Notifier interface {
	OrderConfirmed(ctx context.Context, order *models.Order) error
}

type NotifierConfig struct {
	EmailEnabled bool
	FromEmail    string
	SMSEnabled   bool
	SenderID     string
}

// AWSNotifier sends the confirmation by SES email when the address has an
// email and by SNS SMS to the delivery phone.
type AWSNotifier struct {
	config NotifierConfig
	ses    awsclient.SESAPI
	sns    awsclient.SNSAPI
	logger logger.Logger
}

func NewAWSNotifier(config NotifierConfig, sesClient awsclient.SESAPI, snsClient awsclient.SNSAPI, log logger.Logger) *AWSNotifier {
	return &AWSNotifier{
		config: config,
		ses:    sesClient,
		sns:    snsClient,
		logger: log.WithFields(map[string]interface{}{"component": "order_notifier"}),
	}
}

func (n *AWSNotifier) OrderConfirmed(ctx context.Context, order *models.Order) error {
	var errs []error

	if n.config.EmailEnabled && n.ses != nil && order.DeliveryAddress.Email != "" {
		err := n.sendEmail(ctx, order)
		n.record(ChannelEmail, order.ID, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ChannelEmail, err))
		}
	}

	if n.config.SMSEnabled && n.sns != nil && order.DeliveryAddress.Phone != "" {
		err := n.sendSMS(ctx, order)
		n.record(ChannelSMS, order.ID, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ChannelSMS, err))
		}
	}

	if len(errs) > 0 {
		return apperrors.NewNotificationSendFailedError("order_confirmation", errors.Join(errs...))
	}
	return nil
}

func (n *AWSNotifier) sendEmail(ctx context.Context, order *models.Order) error {
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.config.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{order.DeliveryAddress.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(fmt.Sprintf("Your Swaad order %s is confirmed", shortID(order.ID)))},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(EmailBody(order))},
			},
		},
	})
	return err
}

func (n *AWSNotifier) sendSMS(ctx context.Context, order *models.Order) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(countryCode + validation.NormalizePhone(order.DeliveryAddress.Phone)),
		Message:     aws.String(SMSBody(order)),
	}
	if n.config.SenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {DataType: aws.String("String"), StringValue: aws.String(n.config.SenderID)},
			"AWS.SNS.SMS.SMSType":  {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		}
	}
	_, err := n.sns.Publish(ctx, input)
	return err
}

func (n *AWSNotifier) record(channel, orderID string, err error) {
	if err != nil {
		metrics.NotificationsSent.WithLabelValues(channel, "error").Inc()
		n.logger.Warn("order confirmation not delivered", map[string]interface{}{
			"channel": channel,
			"orderId": orderID,
			"error":   err.Error(),
		})
		return
	}
	metrics.NotificationsSent.WithLabelValues(channel, "sent").Inc()
	n.logger.Info("order confirmation sent", map[string]interface{}{
		"channel": channel,
		"orderId": orderID,
	})
}

// EmailBody lists every line of the order with the grand total.
func EmailBody(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for ordering with Swaad! Order %s is confirmed.\n\n",
		order.DeliveryAddress.FullName, shortID(order.ID))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %dx %s  ₹%d\n", item.Quantity, item.Food.Name, item.UnitPrice*item.Quantity)
	}
	fmt.Fprintf(&b, "\nTotal: ₹%d (cash on delivery)\n", order.Total)
	fmt.Fprintf(&b, "Delivering to: %s, %s %s\n", order.DeliveryAddress.AddressLine1,
		order.DeliveryAddress.City, order.DeliveryAddress.Pincode)
	return b.String()
}

func SMSBody(order *models.Order) string {
	return fmt.Sprintf("Swaad: order %s confirmed. %d item(s), ₹%d payable on delivery.",
		shortID(order.ID), itemCount(order.Items), order.Total)
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

func itemCount(items []models.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
