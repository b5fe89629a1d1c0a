package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/example/examportal/internal/config"
	"github.com/example/examportal/internal/database"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file loaded")
	}
	cfg := config.Load()

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
	}

	// Подключаемся к базе данных
	db, err := database.Connect(cfg)
	if err != nil {
		log.Errorf("Failed to connect to database: %v", err)
		return 1
	}
	defer db.Close()

	// Контекст отменяется по SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := newApp(cfg, db, log, os.Stdout)
	defer a.close()

	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		log.WithError(err).Error("Command failed")
		return 1
	}
	return 0
}
