package log

import (
	"time"

	"github.com/arnavsurve/dropreport/pkg/types"
	"github.com/rs/zerolog"
)

// ZerologAdapter exposes a zerolog.Logger through types.Logger so the engine,
// HTTP client and mailer never import zerolog directly.
type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Nop returns a logger that discards everything.
func Nop() *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.Nop()}
}

func (z *ZerologAdapter) Debug() types.Event {
	return &fieldEvent{e: z.logger.Debug()}
}

func (z *ZerologAdapter) Info() types.Event {
	return &fieldEvent{e: z.logger.Info()}
}

func (z *ZerologAdapter) Warn() types.Event {
	return &fieldEvent{e: z.logger.Warn()}
}

func (z *ZerologAdapter) Error() types.Event {
	return &fieldEvent{e: z.logger.Error()}
}

func (z *ZerologAdapter) With() types.Context {
	return fieldContext{ctx: z.logger.With()}
}

// Step returns a child logger whose events carry step_name.
func (z *ZerologAdapter) Step(name string) types.Logger {
	return &ZerologAdapter{logger: z.logger.With().Str("step_name", name).Logger()}
}

// fieldEvent wraps a pending zerolog event. The event is nil when its level
// is disabled, and zerolog turns every call on a nil event into a no-op.
type fieldEvent struct {
	e *zerolog.Event
}

func (f *fieldEvent) Msg(msg string) {
	f.e.Msg(msg)
}

func (f *fieldEvent) Msgf(format string, v ...any) {
	f.e.Msgf(format, v...)
}

func (f *fieldEvent) Err(err error) types.Event {
	f.e = f.e.Err(err)
	return f
}

func (f *fieldEvent) Str(key, value string) types.Event {
	f.e = f.e.Str(key, value)
	return f
}

func (f *fieldEvent) Int(key string, value int) types.Event {
	f.e = f.e.Int(key, value)
	return f
}

func (f *fieldEvent) Bool(key string, value bool) types.Event {
	f.e = f.e.Bool(key, value)
	return f
}

func (f *fieldEvent) Dur(key string, value time.Duration) types.Event {
	f.e = f.e.Dur(key, value)
	return f
}

func (f *fieldEvent) Interface(key string, value any) types.Event {
	f.e = f.e.Interface(key, value)
	return f
}

// fieldContext accumulates fields for a child logger. zerolog.Context is a
// value, so every call hands back a fresh copy.
type fieldContext struct {
	ctx zerolog.Context
}

func (c fieldContext) Str(key, value string) types.Context {
	return fieldContext{ctx: c.ctx.Str(key, value)}
}

func (c fieldContext) Int(key string, value int) types.Context {
	return fieldContext{ctx: c.ctx.Int(key, value)}
}

func (c fieldContext) Bool(key string, value bool) types.Context {
	return fieldContext{ctx: c.ctx.Bool(key, value)}
}

func (c fieldContext) Interface(key string, value any) types.Context {
	return fieldContext{ctx: c.ctx.Interface(key, value)}
}

func (c fieldContext) Logger() types.Logger {
	return &ZerologAdapter{logger: c.ctx.Logger()}
}
