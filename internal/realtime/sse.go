package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/spacedrop/spacedrop/client/internal/types"
)

// SSESubscriber implements Subscriber over the gateway's server-sent-events
// endpoint. Delivery is at-least-once from the gateway's side; the merge
// engine tolerates redelivery and the initial full fetch covers gaps, so
// reconnecting from scratch after a dropped stream is sufficient.
type SSESubscriber struct {
	hc      *http.Client
	baseURL string
	log     zerolog.Logger

	// Reconnect pacing. A stream that stayed up at least healthyStream is
	// treated as a recovery, so the next drop backs off from retryInitial
	// again instead of whatever the last outage had climbed to.
	retryInitial  time.Duration
	retryMax      time.Duration
	healthyStream time.Duration
}

// NewSSESubscriber builds a subscriber. The injected client must not carry
// an overall request timeout - the stream is long-lived.
func NewSSESubscriber(hc *http.Client, baseURL string, log zerolog.Logger) *SSESubscriber {
	if hc == nil {
		hc = &http.Client{}
	}
	return &SSESubscriber{
		hc:            hc,
		baseURL:       strings.TrimRight(baseURL, "/"),
		log:           log,
		retryInitial:  500 * time.Millisecond,
		retryMax:      30 * time.Second,
		healthyStream: 30 * time.Second,
	}
}

// Subscribe opens the event stream for spaceID and pumps notifications into
// the returned channel until ctx is done. Connection loss triggers
// exponential-backoff reconnects; the channel closes only on ctx
// cancellation.
func (s *SSESubscriber) Subscribe(ctx context.Context, spaceID string) (<-chan Notification, error) {
	if err := types.ValidateIDPresent(spaceID, "spaceId"); err != nil {
		return nil, err
	}

	ch := make(chan Notification, 64)
	go s.pump(ctx, spaceID, ch)
	return ch, nil
}

func (s *SSESubscriber) pump(ctx context.Context, spaceID string, ch chan<- Notification) {
	defer close(ch)

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retryInitial
	exp.MaxInterval = s.retryMax
	exp.MaxElapsedTime = 0 // retry for the life of the subscription

	for {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		err := s.streamOnce(ctx, spaceID, ch)
		if ctx.Err() != nil {
			return
		}
		if time.Since(start) >= s.healthyStream {
			// The connection was up long enough to count as recovered.
			exp.Reset()
		}
		reconnectsTotal.Inc()
		wait := exp.NextBackOff()
		s.log.Debug().Err(err).Dur("retry_in", wait).Str("space", spaceID).Msg("realtime: stream dropped, reconnecting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// streamOnce holds one SSE connection open and forwards its events.
func (s *SSESubscriber) streamOnce(ctx context.Context, spaceID string, ch chan<- Notification) error {
	u := fmt.Sprintf("%s/api/spaces/%s/events", s.baseURL, url.PathEscape(spaceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subscribe: status %d", resp.StatusCode)
	}

	var event, data string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), 16<<20) // photo payloads are large
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			s.dispatch(ctx, event, data, ch)
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			data += strings.TrimSpace(line[len("data:"):])
		case strings.HasPrefix(line, ":"):
			// keep-alive comment
		}
	}
	return scanner.Err()
}

func (s *SSESubscriber) dispatch(ctx context.Context, event, data string, ch chan<- Notification) {
	if data == "" {
		return
	}
	var nt NotificationType
	switch event {
	case "insert", "INSERT":
		nt = NotifyInsert
	case "update", "UPDATE":
		nt = NotifyUpdate
	default:
		return
	}

	var e types.Entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		s.log.Warn().Err(err).Msg("realtime: malformed push payload dropped")
		return
	}
	select {
	case ch <- Notification{Type: nt, Entry: e}:
	case <-ctx.Done():
	}
}
