package logger

import (
	"context"
	"log"

	"cloud.google.com/go/compute/metadata"
	"cloud.google.com/go/logging"
)

// FromContext returns a Cloud Logging standard logger for batch tools.
// Not for request paths; creation failures are fatal by design of the
// tools that call this.
func FromContext(ctx context.Context, name string) *log.Logger {
	projectID, err := metadata.ProjectIDWithContext(ctx)
	if err != nil {
		log.Fatalf("failed to get project ID: %v", err)
	}
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("failed to create logging client: %v", err)
	}
	return client.Logger(name).StandardLogger(logging.Info)
}
