// Package notifier defines how an operator is told about a newly saved lead.
// Drivers live in sub-packages: functions calls a hosted edge function and
// mailer sends the alert over SMTP.
package notifier

import (
	"context"
	"leadintake/pkg/domain"
)

// Dispatcher delivers a lead notification.
//
//go:generate mockgen -package mocknotifier -source=interface.go -destination=mock/mocknotifier.go *
type Dispatcher interface {
	// Invoke delivers notification through the named function. Drivers that
	// have no notion of functions use the name only for logging.
	Invoke(ctx context.Context, functionName string, notification domain.Notification) error
}
