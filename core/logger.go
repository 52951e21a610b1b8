package core

// Logger is implemented by any service that can report application events.
// expected args: error | map[string]interface{} | Actor
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Actor identifies who triggered a logged event, e.g. the JWT subject of an API call.
type Actor struct {
	ID   string
	Name string
}
