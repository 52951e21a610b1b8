package logsvc

import (
	"log"

	"github.com/pkg/errors"
	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/masomo-records/core"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(rollbarerrors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, core.Actor
// Maps are merged into one set of extras, along with the record context of failed operations.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var actorSet bool
	extras := make(map[string]interface{})
	newArgs := make([]interface{}, 0, len(args)+2)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		switch arg := arg.(type) {
		case core.Actor:
			// set the acting client
			if !actorSet { // only set one Actor
				rollbar.SetPerson(arg.ID, arg.Name, "")
				actorSet = true
			}
		case map[string]interface{}:
			for k, v := range arg {
				extras[k] = v
			}
		case error:
			recordContext(arg, extras)
			newArgs = append(newArgs, arg)
		default:
			newArgs = append(newArgs, arg)
		}
	}
	if !actorSet {
		rollbar.ClearPerson()
	}
	if len(extras) > 0 {
		newArgs = append(newArgs, extras)
	}
	return newArgs
}

// recordContext adds the collection, action and record of a failed records operation to extras.
func recordContext(err error, extras map[string]interface{}) {
	var (
		fetchErr *core.FetchError
		mutErr   *core.MutationError
		valErr   *core.ValidationError
	)
	switch {
	case errors.As(err, &mutErr):
		extras["collection"] = mutErr.Collection
		extras["action"] = mutErr.Action
		if mutErr.ID != 0 {
			extras["record_id"] = mutErr.ID
		}
	case errors.As(err, &fetchErr):
		extras["collection"] = fetchErr.Collection
		extras["action"] = "fetch"
	}
	if errors.As(err, &valErr) && len(valErr.Fields) > 0 {
		extras["invalid_fields"] = valErr.FieldNames()
	}
}

func (l RollbarLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		if actor, ok := arg.(core.Actor); ok {
			l.std.Printf("actor: %s (%s)\n", actor.Name, actor.ID)
			continue
		}
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print(msg, args)
	l.std.Fatal(msg)
}
