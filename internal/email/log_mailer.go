package email

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/osa911/portfolio/internal/logging"
)

// LogMailer writes messages to the log instead of sending them. Meant for
// local development.
type LogMailer struct {
	logger *logging.Logger
}

func NewLogMailer(logger *logging.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg *Message) (*SendResult, error) {
	id := "log_" + uuid.NewString()
	m.logger.Info("[MAIL] id=%s from=%s to=%s reply-to=%s subject=%q\n%s",
		id, msg.From, strings.Join(msg.To, ","), msg.ReplyTo, msg.Subject, msg.Text)
	return &SendResult{ID: id}, nil
}
