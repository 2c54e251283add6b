package queue

import (
	"fmt"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/internal/util"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	SnapshotQueue = "snapshot_queue"
	ReloadTopic   = "graph.reload"

	exchangeName = "pubsub_exchange"
	maxRetries   = 10
)

// Queues lists the work queues consumed by the worker.
var Queues = []string{SnapshotQueue}

// Channel is the subset of *amqp091.Channel used by this package.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Enabled reports whether a broker is configured.
func Enabled() bool {
	return util.GetEnv("RABBITMQ_HOST") != ""
}

func Init() (*amqp091.Connection, error) {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnv("RABBITMQ_HOST")
	port := util.GetEnvString("RABBITMQ_PORT", "5672")

	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		user,
		pass,
		host,
		port,
	)

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	return conn, nil
}

func declareExchange(ch Channel) error {
	return ch.ExchangeDeclare(
		exchangeName,
		"topic",
		false, // durable
		true,  // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
}

// SetupQueues declares the topic exchange and, for every queue, its
// dead-letter queue and a retry queue that routes back after 10s.
func SetupQueues(ch Channel, queueNames []string) error {
	if err := declareExchange(ch); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	for _, name := range queueNames {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		_, err = ch.QueueDeclare(
			dlqName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err = ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(10000),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", retryName, err)
		}
	}

	return nil
}

func PublishFIFO(ch Channel, queueName string, data []byte) error {
	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	return ch.Publish(
		"",
		q.Name,
		false,
		false,
		publishing,
	)
}

func PublishTopic(ch Channel, topic string, data []byte) error {
	if err := declareExchange(ch); err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Transient,
		Timestamp:    time.Now(),
	}

	return ch.Publish(
		exchangeName,
		topic,
		false,
		false,
		publishing,
	)
}

// SubscribeTopic binds a private, server-named queue to topic and returns
// its deliveries. Messages are acknowledged on delivery.
func SubscribeTopic(ch Channel, topic string) (<-chan amqp091.Delivery, error) {
	if err := declareExchange(ch); err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		"",
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare subscriber queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, topic, exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind %s to %s: %w", q.Name, topic, err)
	}

	return ch.Consume(
		q.Name,
		"",
		true,  // autoAck
		true,  // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
}

// HandleProcessingError moves a failed message to the retry queue, or to
// the dead-letter queue once it has been retried too often.
func HandleProcessingError(ch Channel, msg amqp091.Delivery, queueName string) {
	retries := retryCount(msg.Headers)

	if retries >= maxRetries {
		dlqName := queueName + "_dlq"
		logger.Info("[Queue] Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp091.Publishing{
				ContentType: msg.ContentType,
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("[Queue] Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["x-retries"] = int32(retries + 1)

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp091.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("[Queue] Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}

func retryCount(headers amqp091.Table) int {
	switch v := headers["x-retries"].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}
