// Package telemetry sends anonymous checkpoint outcome events when the user
// has opted in. No messages, paths or hashes leave the machine: only the
// category and the action each policy took.
package telemetry

import (
	"context"
	"log/slog"
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/posthog/posthog-go"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/logging"
)

// OptOutEnvVar disables telemetry regardless of settings.
const OptOutEnvVar = "CHECKPOINT_TELEMETRY_OPTOUT"

const (
	endpoint  = "https://us.i.posthog.com"
	appID     = "checkpoint"
	eventName = "checkpoint_run"
)

// APIKey is injected at build time with -ldflags. Builds without a key never
// send events.
var APIKey = ""

// Event describes one finished checkpoint invocation.
type Event struct {
	Category string
	Recorded bool
	Commit   string
	Push     string
}

// Client records checkpoint events.
type Client interface {
	TrackCheckpoint(e Event)
	Close()
}

// NoOpClient discards all events.
type NoOpClient struct{}

// TrackCheckpoint drops e.
func (NoOpClient) TrackCheckpoint(Event) {}

// Close does nothing.
func (NoOpClient) Close() {}

// PostHogClient forwards events to PostHog under a hashed machine ID.
type PostHogClient struct {
	client     posthog.Client
	distinctID string
	version    string
}

// NewClient returns a PostHog-backed client when enabled, a key is compiled
// in and the opt-out variable is unset; otherwise a NoOpClient.
func NewClient(enabled bool, version string) Client {
	if !enabled || APIKey == "" || os.Getenv(OptOutEnvVar) != "" {
		return NoOpClient{}
	}

	ctx := logging.WithComponent(context.Background(), "telemetry")
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		logging.Debug(ctx, "machine id unavailable, telemetry disabled", slog.String("error", err.Error()))
		return NoOpClient{}
	}
	c, err := posthog.NewWithConfig(APIKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		logging.Debug(ctx, "posthog client init failed, telemetry disabled", slog.String("error", err.Error()))
		return NoOpClient{}
	}
	return newPostHogClient(c, id, version)
}

func newPostHogClient(c posthog.Client, distinctID, version string) *PostHogClient {
	return &PostHogClient{client: c, distinctID: distinctID, version: version}
}

// TrackCheckpoint enqueues e as a PostHog capture. Enqueue failures are only
// logged.
func (p *PostHogClient) TrackCheckpoint(e Event) {
	props := posthog.NewProperties().
		Set("category", e.Category).
		Set("recorded", e.Recorded).
		Set("commit", e.Commit).
		Set("push", e.Push).
		Set("version", p.version)

	err := p.client.Enqueue(posthog.Capture{
		DistinctId: p.distinctID,
		Event:      eventName,
		Properties: props,
	})
	if err != nil {
		logging.Debug(logging.WithComponent(context.Background(), "telemetry"),
			"failed to enqueue event", slog.String("error", err.Error()))
	}
}

// Close flushes queued events.
func (p *PostHogClient) Close() {
	_ = p.client.Close()
}
