package adhandler

import "github.com/rs/zerolog"

/*
log.go defines the consumed Logger collaborator of §6 ("an object with
async methods debug, info, warn, error, critical, each accepting (data,
req)") and ships a concrete zerolog-backed default, grounded on
cs3org/reva's pkg/utils/ldap/identity.go, which pulls in
github.com/rs/zerolog for exactly this kind of LDAP-adjacent component.
Go doesn't need an explicit "async" qualifier the way the distilled spec's
source runtime did (a goroutine already doesn't block the caller); each
method below spawns one to preserve the "logging never blocks the search"
property §5's suspension-point list calls out.
*/

// Logger is the logging collaborator the handler, driver and schema
// bootstrap call into.
type Logger interface {
	Debug(data any, req any)
	Info(data any, req any)
	Warn(data any, req any)
	Error(data any, req any)
	Critical(data any, req any)
}

// NopLogger discards everything. Used as the default when no Logger is
// configured, and in tests.
type NopLogger struct{}

func (NopLogger) Debug(any, any)    {}
func (NopLogger) Info(any, any)     {}
func (NopLogger) Warn(any, any)     {}
func (NopLogger) Error(any, any)    {}
func (NopLogger) Critical(any, any) {}

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	Log zerolog.Logger
}

func NewZerologLogger(log zerolog.Logger) ZerologLogger {
	return ZerologLogger{Log: log}
}

func (z ZerologLogger) Debug(data, req any) {
	go z.Log.Debug().Interface("data", data).Interface("req", req).Send()
}

func (z ZerologLogger) Info(data, req any) {
	go z.Log.Info().Interface("data", data).Interface("req", req).Send()
}

func (z ZerologLogger) Warn(data, req any) {
	go z.Log.Warn().Interface("data", data).Interface("req", req).Send()
}

func (z ZerologLogger) Error(data, req any) {
	go z.Log.Error().Interface("data", data).Interface("req", req).Send()
}

func (z ZerologLogger) Critical(data, req any) {
	go z.Log.WithLevel(zerolog.FatalLevel).Interface("data", data).Interface("req", req).Send()
}
