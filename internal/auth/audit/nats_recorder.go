package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rackatlas/inventory-api/internal/platform/messagebroker"
)

// DefaultSubject is the NATS subject audit entries are published on.
const DefaultSubject = "audit.auth"

// NATSRecorder publishes audit entries as JSON messages so the logging
// subsystem can consume them out of process.
type NATSRecorder struct {
	client  *messagebroker.NATSClient
	subject string
}

func NewNATSRecorder(client *messagebroker.NATSClient, subject string) *NATSRecorder {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSRecorder{client: client, subject: subject}
}

func (r *NATSRecorder) Record(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	if err := r.client.Publish(ctx, r.subject, payload); err != nil {
		return fmt.Errorf("publish audit entry: %w", err)
	}
	return nil
}
