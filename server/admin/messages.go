package admin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/skybiz/skybiz/server/mailer"
	"github.com/skybiz/skybiz/server/models"
)

type replyInput struct {
	MessageID uint
	ReplyText string
}

func decodeReply(form url.Values) (replyInput, error) {
	verr := &ValidationError{}
	input := replyInput{
		MessageID: formRequiredID(form, "message_id", verr),
		ReplyText: form.Get("reply_text"),
	}

	return input, verr.orNil()
}

// sendReply emails the reply to the sender of the message. The message is only marked
// as replied once the mail transport accepted it.
func sendReply(ctx context.Context, env *Env, input replyInput) (Result, error) {
	message, err := models.FindContactMessage(input.MessageID)
	if err != nil {
		return Result{}, notFoundAs(err, "Message")
	}

	if strings.TrimSpace(input.ReplyText) == "" {
		return Result{}, ErrEmptyReply
	}

	if env.Mailer == nil {
		return Result{}, &MailError{Err: mailer.ErrNotConfigured}
	}

	subject := fmt.Sprintf("Re: %v", message.Subject)
	err = env.Mailer.Send(ctx, env.FromEmail, message.Email, subject, input.ReplyText)
	if err != nil {
		return Result{}, &MailError{Err: err}
	}

	if err = message.MarkReplySent(); err != nil {
		return Result{}, notFoundAs(err, "Message")
	}

	return Result{Notice: fmt.Sprintf("Reply sent successfully to %v.", message.Email)}, nil
}

func deleteAllMessages(ctx context.Context, env *Env, _ struct{}) (Result, error) {
	deleted, err := models.DeleteAllContactMessages()
	if err != nil {
		return Result{}, err
	}

	logg.Infof("Deleted %v contact messages", deleted)
	return Result{Notice: "All contact messages have been deleted."}, nil
}

func deleteAllSpeedTests(ctx context.Context, env *Env, _ struct{}) (Result, error) {
	deleted, err := models.DeleteAllSpeedTestResults()
	if err != nil {
		return Result{}, err
	}

	logg.Infof("Deleted %v speed test results", deleted)
	return Result{Notice: "All speed test results have been deleted."}, nil
}
