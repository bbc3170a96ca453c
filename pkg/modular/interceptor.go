package modular

import (
	"github.com/charmbracelet/log"
)

// Interceptor observes lifecycle transitions. Callbacks run synchronously
// at each transition, on the goroutine driving the transition.
//
// An interceptor that panics does not poison the lifecycle: the panic is
// recovered, logged at error level, and swallowed.
type Interceptor interface {
	// OnInit fires before the module enters loading.
	OnInit(m Module)
	// OnLoaded fires after the module published the loaded status.
	OnLoaded(m Module)
	// OnError fires when initialization fails, before the error is
	// rethrown to the caller.
	OnError(m Module, err error)
	// OnDispose fires after the module's controller is disposed.
	OnDispose(m Module)
}

// LoggingInterceptor logs lifecycle transitions with structured key-value
// pairs. It is the default interceptor wired by [Options.WithDefaults].
type LoggingInterceptor struct {
	Logger *log.Logger
}

// NewLoggingInterceptor creates a logging interceptor. A nil logger falls
// back to log.Default().
func NewLoggingInterceptor(logger *log.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingInterceptor{Logger: logger}
}

func (i *LoggingInterceptor) OnInit(m Module) {
	i.Logger.Debug("module initializing", "module", moduleName(m))
}

func (i *LoggingInterceptor) OnLoaded(m Module) {
	i.Logger.Info("module loaded", "module", moduleName(m))
}

func (i *LoggingInterceptor) OnError(m Module, err error) {
	i.Logger.Error("module failed", "module", moduleName(m), "err", err)
}

func (i *LoggingInterceptor) OnDispose(m Module) {
	i.Logger.Debug("module disposed", "module", moduleName(m))
}
