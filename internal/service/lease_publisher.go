// Package service holds the side channels that run next to request
// handling.  Currently that is the lease event publisher.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/propconsole/internal/config"
	"github.com/iliyamo/propconsole/internal/model"
	q "github.com/iliyamo/propconsole/internal/queue"
)

// publishTimeout bounds one background publish.
const publishTimeout = 5 * time.Second

// LeasePublisher sends lease.created events to RabbitMQ.  It dials per
// publish; lease creation is rare enough that a pooled connection is not
// worth its reconnect handling.
type LeasePublisher struct {
	cfg     config.QueueConfig
	publish func(ctx context.Context, ev q.LeaseCreatedEvent) error
}

func NewLeasePublisher(cfg config.QueueConfig) *LeasePublisher {
	p := &LeasePublisher{cfg: cfg}
	p.publish = p.Publish
	return p
}

// LeaseCreated publishes l in the background.  The lease is already
// committed, so failures are only logged.
func (p *LeasePublisher) LeaseCreated(_ context.Context, l model.Lease) {
	if !p.cfg.Enabled {
		return
	}
	ev := q.NewLeaseCreatedEvent(l)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.publish(ctx, ev); err != nil {
			log.Printf("rabbitmq: lease %s not published: %v", ev.LeaseID, err)
		}
	}()
}

// Publish sends ev to the lease.created queue as a persistent message.
func (p *LeasePublisher) Publish(ctx context.Context, ev q.LeaseCreatedEvent) error {
	conn, err := amqp.Dial(p.cfg.URL)
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

	if _, err := ch.QueueDeclare(
		q.LeaseCreatedQueue, // name
		true,                // durable
		false,               // autoDelete
		false,               // exclusive
		false,               // noWait
		nil,                 // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",                  // default exchange
		q.LeaseCreatedQueue, // routing key = queue name
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			MessageId:    ev.LeaseID,
			Body:         body,
		},
	)
}
