package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cabinet-backend/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ReminderSender delivers one reminder message and returns the provider's
// message id.
type ReminderSender interface {
	Send(ctx context.Context, channel models.ReminderType, to, message string) (string, error)
}

var ErrChannelUnsupported = errors.New("reminder channel not supported")

// messageCreator is the part of the Twilio API the sender uses.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
}

// TwilioSender sends SMS and WhatsApp reminders.
type TwilioSender struct {
	api            messageCreator
	phoneNumber    string
	whatsAppNumber string
}

func NewTwilioSender(cfg TwilioConfig) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSender{
		api:            client.Api,
		phoneNumber:    cfg.PhoneNumber,
		whatsAppNumber: cfg.WhatsAppNumber,
	}
}

func (t *TwilioSender) Send(ctx context.Context, channel models.ReminderType, to, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(message)
	switch channel {
	case models.ReminderWhatsApp:
		params.SetTo("whatsapp:" + strings.TrimPrefix(to, "whatsapp:"))
		params.SetFrom("whatsapp:" + t.whatsAppNumber)
	case models.ReminderSMS:
		params.SetTo(to)
		params.SetFrom(t.phoneNumber)
	default:
		return "", fmt.Errorf("%w: %s", ErrChannelUnsupported, channel)
	}

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio %s: %w", channel, err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// LogSender only logs the message. It stands in when no provider is
// configured for a channel.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(ctx context.Context, channel models.ReminderType, to, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := "log-" + uuid.NewString()
	l.logger.Info().
		Str("channel", string(channel)).
		Str("to", to).
		Str("id", id).
		Msg(message)
	return id, nil
}

// ChannelRouter picks a sender per channel and falls back to Default.
type ChannelRouter struct {
	Senders map[models.ReminderType]ReminderSender
	Default ReminderSender
}

func (r ChannelRouter) Send(ctx context.Context, channel models.ReminderType, to, message string) (string, error) {
	if s, ok := r.Senders[channel]; ok {
		return s.Send(ctx, channel, to, message)
	}
	if r.Default == nil {
		return "", fmt.Errorf("%w: %s", ErrChannelUnsupported, channel)
	}
	return r.Default.Send(ctx, channel, to, message)
}
