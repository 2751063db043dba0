package controller

import "time"

// Steps reported through Progress.Step.
const (
	StepStop          = "stop"
	StepDisplayMode   = "display-mode"
	StepInputSource   = "input-source"
	StepPatternConfig = "pattern-config"
	StepTriggerMode   = "trigger-mode"
	StepPeriod        = "exposure-period"
	StepOpenMailbox   = "open-mailbox"
	StepLUTEntry      = "lut-entry"
	StepCloseMailbox  = "close-mailbox"
	StepValidate      = "validate"
	StepStart         = "start"
	StepPowerMode     = "power-mode"
	StepGamma         = "gamma"
	StepStatus        = "status"
	StepComplete      = "complete"
)

// Progress contains information about an orchestrated procedure.
// Passed to ProgressCallback after each step.
type Progress struct {
	// Step names the step that just completed (see the Step* constants)
	Step string

	// Current is the number of steps completed so far
	Current int

	// Total is the number of steps in the procedure
	Total int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the procedure started
	ElapsedTime time.Duration
}

// ProgressCallback is called after each step of an orchestrated procedure.
// Implementations should return quickly; the controller waits for them.
//
// Example:
//
//	ctl := controller.New(dev,
//	    controller.WithProgressCallback(func(p controller.Progress) {
//	        fmt.Printf("[%s] %d/%d\n", p.Step, p.Current, p.Total)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the controller.
// This allows integration with any logging framework; *slog.Logger satisfies it.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	ctl := controller.New(dev, controller.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
