package twilio

import (
	"context"
	"fmt"
	"strings"

	"github.com/skybiz/skybiz/shared"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier sends a short message to a phone number.
type Notifier interface {
	Notify(ctx context.Context, to, msg string) error
}

type ClientWrapper struct {
	client *twilio.RestClient
	config shared.TwilioConfig
}

func NewClient(config shared.TwilioConfig) *ClientWrapper {
	client := twilio.NewRestClientWithParams(twilio.RestClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})

	return &ClientWrapper{client: client, config: config}
}

// Notify sends msg over WhatsApp from the configured number.
func (cw *ClientWrapper) Notify(ctx context.Context, to, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom(whatsAppAddress(cw.config.WhatsAppNumber))
	params.SetTo(whatsAppAddress(to))
	params.SetBody(msg)

	resp, err := cw.client.ApiV2010.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("CreateMessage: %v", err)
	}

	if resp.ErrorMessage != nil {
		return fmt.Errorf("CreateMessage: %v", *resp.ErrorMessage)
	}

	return nil
}

func whatsAppAddress(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}

	return "whatsapp:" + number
}
