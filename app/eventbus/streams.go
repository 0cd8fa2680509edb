package eventbus

import (
	"context"
	"fmt"
)

// Stream and subject layout for the ladder. A single durable stream carries
// every lifecycle event; the scoreboard subjects stay on core NATS and never
// reach JetStream.
const (
	LadderStream = "ladder"
)

// StreamSubjects returns the subject space captured by LadderStream.
func StreamSubjects() []string {
	return []string{"ladder.>"}
}

// InitializeStreams ensures the durable streams exist before the router runs.
func InitializeStreams(ctx context.Context, bus EventBus) error {
	if err := bus.EnsureStream(ctx, LadderStream, StreamSubjects()); err != nil {
		return fmt.Errorf("failed to ensure %s stream: %w", LadderStream, err)
	}
	return nil
}
