package logger

// componentLogger prefixes every message with the owning component name.
type componentLogger struct {
	name string
	next Logger
}

// WithComponent tags messages written through the returned Logger with
// "name: ". Close is forwarded so the caller keeps a single owner.
func WithComponent(l Logger, name string) Logger {
	return &componentLogger{name: name, next: OrNop(l)}
}

func (c *componentLogger) Info(format string, args ...interface{}) {
	c.next.Info(c.name+": "+format, args...)
}

func (c *componentLogger) Warning(format string, args ...interface{}) {
	c.next.Warning(c.name+": "+format, args...)
}

func (c *componentLogger) Error(format string, args ...interface{}) {
	c.next.Error(c.name+": "+format, args...)
}

func (c *componentLogger) Close() error {
	return c.next.Close()
}

// debugGate drops Info messages unless enabled. Warnings and errors pass.
type debugGate struct {
	Logger
	enabled bool
}

// Verbose returns l unchanged when enabled, otherwise a Logger that
// suppresses informational output.
func Verbose(l Logger, enabled bool) Logger {
	if enabled {
		return l
	}
	return &debugGate{Logger: OrNop(l), enabled: enabled}
}

func (d *debugGate) Info(format string, args ...interface{}) {
	if d.enabled {
		d.Logger.Info(format, args...)
	}
}
