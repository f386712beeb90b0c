package messaging

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// messageCreator is the slice of the Twilio REST API used for sending.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioMessenger sends WhatsApp/SMS messages through the Twilio REST API.
type TwilioMessenger struct {
	api    messageCreator
	from   string
	logger *zap.Logger
}

// NewTwilioMessenger builds a messenger with account credentials.
func NewTwilioMessenger(accountSID, authToken, from string, logger *zap.Logger) (*TwilioMessenger, error) {
	if accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("twilio credentials not set")
	}
	if from == "" {
		return nil, fmt.Errorf("twilio sender number not set")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return newTwilioMessenger(client.Api, from, logger), nil
}

func newTwilioMessenger(api messageCreator, from string, logger *zap.Logger) *TwilioMessenger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TwilioMessenger{api: api, from: from, logger: logger}
}

// Send posts one message. The Twilio SDK call is synchronous and does not
// take a context; ctx is honoured only before the call starts.
func (m *TwilioMessenger) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(m.from)
	params.SetTo(to)
	params.SetBody(body)

	msg, err := m.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message to %s: %w", to, err)
	}
	if msg != nil && msg.Sid != nil {
		m.logger.Debug("twilio message accepted", zap.String("to", to), zap.String("sid", *msg.Sid))
	}
	return nil
}
