package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/core/resource"
	"github.com/trezcool/masomo-records/services/logger"
	"github.com/trezcool/masomo-records/storage"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()

	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	rbLogger := logsvc.NewRollbarLogger(stdLogger, conf)
	rbLogger.Enable(!conf.Debug)
	logger = rbLogger

	// storage is only opened by the commands that need it: migrate and createdb run before the database exists
	lazy := &lazyRegistry{conf: conf}
	defer lazy.close()

	validate, translator := core.NewValidator()
	cli := commandLine{
		conf:       conf,
		out:        os.Stdout,
		backend:    lazy.backend,
		validate:   validate,
		translator: translator,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		lazy.close()
		os.Exit(1)
	}
}

type lazyRegistry struct {
	conf *core.Config
	reg  *storage.Registry
}

func (l *lazyRegistry) backend(collection string) (resource.Backend, error) {
	if l.reg == nil {
		reg, err := storage.Open(context.Background(), l.conf, logger, academics.Schemas()...)
		if err != nil {
			return nil, err
		}
		l.reg = reg
	}
	return l.reg.Backend(collection)
}

func (l *lazyRegistry) close() {
	if l.reg == nil {
		return
	}
	if err := l.reg.Close(); err != nil {
		logger.Error("closing storage", err)
	}
	l.reg = nil
}
