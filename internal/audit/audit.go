// Package audit records structured login and registration events. Sinks
// are fire-and-forget: a failing sink never affects the outcome of the
// request that produced the event.
package audit

import (
	"context"
	"time"

	"github.com/arashmdn/student-portal/pkg/logger"
)

// Event kinds.
const (
	KindRegister   = "auth.register"
	KindLogin      = "auth.login"
	KindAdminLogin = "auth.admin_login"
)

type Event struct {
	Kind          string    `json:"kind"`
	Success       bool      `json:"success"`
	UserID        int64     `json:"user_id,omitempty"`
	StudentNumber string    `json:"student_number,omitempty"`
	ClientIP      string    `json:"client_ip,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	At            time.Time `json:"at"`
}

type Sink interface {
	Record(ctx context.Context, event Event)
}

// LogSink writes events to the structured log. It is the fallback when no
// message broker is configured.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Record(ctx context.Context, event Event) {
	logger.InfoContext(ctx, "audit event",
		"kind", event.Kind,
		"success", event.Success,
		"user_id", event.UserID,
		"student_number", event.StudentNumber,
		"client_ip", event.ClientIP,
		"detail", event.Detail,
	)
}
