package main

import (
	"spendfy/internal/cli"
	"spendfy/internal/config"
	"spendfy/internal/log"
	"spendfy/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting spendfy-worker")

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	w := worker.NewBudgetWorker(res.Store, logger, cfg.BudgetAlertThreshold)

	var consumer worker.Consumer
	if res.Events != nil {
		consumer = res.Events
	} else {
		logger.Info("AMQP disabled, running periodic budget sweeps only")
	}

	if err := w.Run(ctx, consumer, cfg.BudgetSweepInterval); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		return
	}
	logger.Info("Worker shutdown complete")
}
