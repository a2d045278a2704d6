// Package mailer sends account emails. Delivery is delegated to a provider;
// Log only records what would be sent.
package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
	SendResetSuccess(ctx context.Context, to string) error
}

type Log struct {
	log logrus.FieldLogger
}

func NewLog(log logrus.FieldLogger) *Log {
	return &Log{log: log.WithField("component", "mailer")}
}

func (m *Log) SendPasswordReset(_ context.Context, to, resetURL string) error {
	m.log.WithFields(logrus.Fields{"to": to, "reset_url": resetURL}).Info("password reset email")
	return nil
}

func (m *Log) SendResetSuccess(_ context.Context, to string) error {
	m.log.WithField("to", to).Info("password reset success email")
	return nil
}
