package main

import (
	"context"
	"errors"
	"time"

	"finsight/internal/amqp"
	"finsight/internal/cli"
	"finsight/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.Setup(log.ComponentAMQP)

	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "Activity logger needs a broker", errors.New("AMQP_URL is not set"))
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	ctx := cli.GracefulShutdown(logger, 10*time.Second, nil)

	logger.Info("Starting activity logger", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	err = client.Run(ctx, func(msg *amqp.ActivityMessage) error {
		logger.Info("Activity",
			log.FieldResource, msg.Resource,
			log.FieldOperation, msg.Action,
			log.FieldID, msg.ID,
			"at", msg.Timestamp)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatal(logger, "Activity consumer failed", err)
	}
	logger.Info("Activity logger stopped")
}
