package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/pathways/backend/internal/bootstrap"
	"github.com/OFFIS-RIT/pathways/backend/internal/queue"
	"github.com/OFFIS-RIT/pathways/backend/internal/storage"
	"github.com/OFFIS-RIT/pathways/backend/internal/util"
	"github.com/OFFIS-RIT/pathways/backend/pkg/leaselock"
	"github.com/OFFIS-RIT/pathways/backend/pkg/logger"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	bootstrap.InitLogger("worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init s3 client
	client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("Could not create S3 client", "err", err)
	}

	// The worker always exports from the hosted record store.
	upstream, err := bootstrap.NewAirtableClient()
	if err != nil {
		logger.Fatal("Could not create Airtable client", "err", err)
	}

	graphClient, err := bootstrap.NewGraphClient()
	if err != nil {
		logger.Fatal("Could not create graph client", "err", err)
	}

	// Init rabbitmq
	conn, err := queue.Init()
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}
	defer conn.Close()

	// Init rabbitmq queues if not exist
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, queue.Queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	processor := &queue.SnapshotProcessor{
		Upstream: upstream,
		Builder:  graphClient,
		Storage:  client,
		Bucket:   storage.Bucket(),
		Key:      storage.SnapshotKey(),
		Parallel: util.GetEnvInt("FETCH_PARALLEL", len(source.AllTables)),
		Channel:  ch,
	}

	// Init lease locks when several workers share a database
	if dsn := util.GetEnv("DATABASE_URL"); dsn != "" {
		pgConn, err := pgxpool.New(ctx, dsn)
		if err != nil {
			logger.Fatal("Unable to connect to database", "err", err)
		}
		defer pgConn.Close()

		locks := leaselock.New(pgConn)
		if err := locks.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to prepare lock table", "err", err)
		}
		processor.Locker = locks
	}

	logger.Info("Listening for messages")

	// Create a single consumer channel with prefetch=1
	// This ensures only ONE message is delivered at a time across all queues
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(1, 0, true)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	type queuedMessage struct {
		msg       amqp.Delivery
		queueName string
	}

	messageChan := make(chan queuedMessage)

	for _, queueName := range queue.Queues {
		go func(qName string) {
			consumerTag := fmt.Sprintf("%s_consumer", qName)
			msgs, err := consumerCh.Consume(
				qName,
				consumerTag,
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,   // args
			)
			if err != nil {
				logger.Fatal("Failed to start consuming", "queue", qName, "err", err)
			}

			for {
				select {
				case <-ctx.Done():
					logger.Info("Stopping consumer", "queue", qName)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("Message channel closed", "queue", qName)
						return
					}
					messageChan <- queuedMessage{msg: msg, queueName: qName}
				}
			}
		}(queueName)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case qm := <-messageChan:
				startTime := time.Now()
				logger.Info("Received message", "queue", qm.queueName)

				var processingErr error
				switch qm.queueName {
				case queue.SnapshotQueue:
					processingErr = processor.Process(ctx, qm.msg.Body)
				default:
					processingErr = fmt.Errorf("no processor for queue %s", qm.queueName)
				}

				// If there was an error send to retry or dead-letter, otherwise ack the message
				if processingErr != nil {
					logger.Error("Error processing message", "queue", qm.queueName, "err", processingErr)
					queue.HandleProcessingError(consumerCh, qm.msg, qm.queueName)
				} else {
					err := qm.msg.Ack(false)
					if err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", qm.queueName)
				}

				logger.Info("Processing time", "duration", time.Since(startTime).Round(time.Millisecond))
				logger.Info("Waiting for next message")
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}
