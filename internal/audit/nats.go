package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/arashmdn/student-portal/pkg/logger"
)

const subjectPrefix = "portal.audit."

// NATSSink publishes events to a NATS subject per event kind. Publish
// errors are logged and dropped; audit delivery is best-effort.
type NATSSink struct {
	conn *nats.Conn
}

func NewNATSSink(url string) (*NATSSink, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSSink{conn: conn}, nil
}

func (s *NATSSink) Record(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.ErrorContext(ctx, "failed to marshal audit event", "error", err, "kind", event.Kind)
		return
	}
	if err := s.conn.Publish(subjectPrefix+event.Kind, payload); err != nil {
		logger.WarnContext(ctx, "failed to publish audit event", "error", err, "kind", event.Kind)
	}
}

func (s *NATSSink) Close() {
	s.conn.Close()
}
