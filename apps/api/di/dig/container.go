package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/masomo-records/apps/api/echo"
	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/core/resource"
	"github.com/trezcool/masomo-records/services/logger"
	"github.com/trezcool/masomo-records/storage"
)

type StorageLoggerParam struct {
	dig.In
	Logger core.Logger `name:"storageLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStorageLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "STORAGE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newRegistry(conf *core.Config, loggerParam StorageLoggerParam) *storage.Registry {
	reg, err := storage.Open(context.Background(), conf, loggerParam.Logger, academics.Schemas()...)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	return reg
}

func newServices(reg *storage.Registry, validate *validator.Validate, translator ut.Translator) ([]*resource.Service, error) {
	schemas := academics.Schemas()
	services := make([]*resource.Service, 0, len(schemas))
	for _, s := range schemas {
		backend, err := reg.Backend(s.Collection)
		if err != nil {
			return nil, err
		}
		services = append(services, resource.NewService(s, backend, validate, translator))
	}
	return services, nil
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	services []*resource.Service,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Services:   services,
		Validate:   validate,
		Translator: translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newStorageLogger, dig.Name("storageLogger")))
	must(c.Provide(newRegistry))
	must(c.Provide(core.NewValidator))
	must(c.Provide(newServices))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
