// Package service provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package service

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/lunchly/internal/config"
    q "github.com/iliyamo/lunchly/internal/queue"
)

// Publisher is implemented by anything that can deliver reservation events.
type Publisher interface {
    PublishReservationSaved(ctx context.Context, event q.ReservationSavedEvent) error
}

// AMQPPublisher publishes to a durable queue on the default exchange.  It
// dials a fresh connection per event, which is adequate for the write rate of
// a single restaurant.
type AMQPPublisher struct {
    cfg  config.QueueConfig
    dial func(url string) (*amqp.Connection, error)
}

func NewAMQPPublisher(cfg config.QueueConfig) *AMQPPublisher {
    return &AMQPPublisher{cfg: cfg, dial: amqp.Dial}
}

// PublishReservationSaved marshals event and publishes it as a persistent
// message whose routing key is the queue name.
func (p *AMQPPublisher) PublishReservationSaved(ctx context.Context, event q.ReservationSavedEvent) error {
    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    conn, err := p.dial(p.cfg.URL)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        p.cfg.QueueName, // name
        true,            // durable
        false,           // autoDelete
        false,           // exclusive
        false,           // noWait
        nil,             // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         "reservation." + event.Kind,
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",              // default exchange
        p.cfg.QueueName, // routing key = queue name
        false,           // mandatory
        false,           // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishReservationSaved(context.Context, q.ReservationSavedEvent) error { return nil }
