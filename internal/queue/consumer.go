package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog/log"
)

// StartBookedConsumer connects to RabbitMQ, declares the stall.booked queue
// (durable), and appends each event to logs/bookings.log as a single
// human-readable line.  It runs a reconnect loop forever: broker outages
// are logged and retried with backoff, and a malformed message is rejected
// without requeue so the loop never spins on poison.
func StartBookedConsumer() {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(brokerURL())
        if err != nil {
            log.Warn().Err(err).Dur("retry_in", backoff).Msg("booked-consumer: dial failed")
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn); err != nil {
            log.Warn().Err(err).Msg("booked-consumer: consume loop ended, reconnecting")
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn().Err(err).Msg("booked-consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(bookedQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(bookedQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := recordBooking(d.Body); err != nil {
            log.Error().Err(err).Msg("booked-consumer: record failed")
            _ = d.Nack(false, false) // reject, do not requeue
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// recordBooking appends one line per event to logs/bookings.log.
func recordBooking(body []byte) error {
    var ev StallBookedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join("logs", "bookings.log"),
        os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    line := fmt.Sprintf("[%s] Stall booked | ref=%s | stall=%s (%s) | layout=%s | category=%s | name=%q | business=%q | phone=%s\n",
        ev.BookedAt, ev.BookingRef, ev.StallID, ev.StallLabel, ev.Layout, ev.Category, ev.Name, ev.BusinessName, ev.Phone)
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
