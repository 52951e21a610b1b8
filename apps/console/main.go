package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/core/resource"
	"github.com/trezcool/masomo-records/services/logger"
	"github.com/trezcool/masomo-records/storage"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// errors go to stderr, the console owns stdout
	stdLogger := log.New(os.Stderr, "CONSOLE : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := storage.Open(ctx, conf, logger, academics.Schemas()...)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logger.Error("closing storage", err)
		}
	}()

	// =========================================================================
	// Start Console

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	cons := newConsole(os.Stdin, os.Stdout, logger, interactive)
	for _, s := range academics.Schemas() {
		backend, err := reg.Backend(s.Collection)
		if err != nil {
			logger.Fatal(err.Error(), err)
		}
		if err = cons.addPage(s, backend, resource.WithStaleLoadGuard()); err != nil {
			logger.Fatal(err.Error(), err)
		}
	}

	if err := cons.run(ctx); err != nil && err != context.Canceled {
		logger.Error("console stopped", err)
	}
}
