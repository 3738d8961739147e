// Package live broadcasts stall status changes between sessions.  Every
// successful write publishes a small JSON patch to a per-layout Redis
// channel; each active layout view holds exactly one subscription and
// patches its in-memory list incrementally.  This is a best-effort
// freshness mechanism: delivery is at-least-once, duplicates are possible,
// and a dropped subscription is silent (the reconcile poll catches up).
package live

import (
    "context"
    "encoding/json"
    "fmt"

    "github.com/redis/go-redis/v9"
    "github.com/rs/zerolog"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
)

// StatusChange is the wire payload: one changed stall and its new status.
type StatusChange struct {
    ID     string         `json:"id"`
    Status catalog.Status `json:"status"`
}

// Channel publishes and subscribes to per-layout status updates.  A nil
// Redis client disables the channel: publishes become no-ops and Subscribe
// reports an error the caller downgrades to polling.
type Channel struct {
    rdb *redis.Client
    log zerolog.Logger
}

// NewChannel wraps a Redis client.  rdb may be nil.
func NewChannel(rdb *redis.Client, log zerolog.Logger) *Channel {
    return &Channel{rdb: rdb, log: log}
}

// channelName scopes a subscription to one layout partition.
func channelName(layout catalog.Layout) string {
    return "stalls:" + string(layout)
}

// Publish announces a status change to every subscriber of the stall's
// layout.  Publish failures are logged and swallowed; the write already
// happened and the reconcile poll will deliver it eventually.
func (c *Channel) Publish(ctx context.Context, layout catalog.Layout, id string, status catalog.Status) {
    if c.rdb == nil {
        return
    }
    payload, err := json.Marshal(StatusChange{ID: id, Status: status})
    if err != nil {
        c.log.Error().Err(err).Str("stall", id).Msg("encode status change")
        return
    }
    if err := c.rdb.Publish(ctx, channelName(layout), payload).Err(); err != nil {
        c.log.Warn().Err(err).Str("stall", id).Msg("publish status change")
    }
}

// Subscribe starts one subscription for a layout and invokes onChange for
// every patch until the returned function is called or ctx is cancelled.
// Malformed payloads are skipped.  If the connection drops, the receive
// loop simply ends; no error reaches the user.
func (c *Channel) Subscribe(ctx context.Context, layout catalog.Layout, onChange func(id string, status catalog.Status)) (func(), error) {
    if c.rdb == nil {
        return nil, fmt.Errorf("live channel disabled: no redis client")
    }
    ps := c.rdb.Subscribe(ctx, channelName(layout))
    // Force the SUBSCRIBE round trip so a dead broker fails here, not later.
    if _, err := ps.Receive(ctx); err != nil {
        _ = ps.Close()
        return nil, fmt.Errorf("subscribe %s: %w", channelName(layout), err)
    }

    go func() {
        for msg := range ps.Channel() {
            var change StatusChange
            if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
                c.log.Warn().Err(err).Str("channel", msg.Channel).Msg("bad status payload")
                continue
            }
            onChange(change.ID, change.Status)
        }
        c.log.Debug().Str("layout", string(layout)).Msg("live subscription closed")
    }()

    return func() { _ = ps.Close() }, nil
}
