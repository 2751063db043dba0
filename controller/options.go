package controller

import "time"

// Config holds the controller configuration.
type Config struct {
	// ProgressCallback is called after each step of an orchestrated procedure (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// CommandDelay is the pause after every command that lets the controller
	// finish processing before the next one arrives
	CommandDelay time.Duration

	// SequenceTag is the sequence byte stamped on every catalog command
	SequenceTag byte

	// StrictReplies makes a failed reply read after a write command fatal.
	// By default the failure is logged and the command treated as sent.
	StrictReplies bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		CommandDelay: 20 * time.Millisecond,
		SequenceTag:  0x00,
	}
}

// Option is a functional option for configuring the Controller.
type Option func(*Config)

// WithProgressCallback sets a callback function to track procedure progress.
//
// Example:
//
//	ctl := controller.New(dev,
//	    controller.WithProgressCallback(func(p controller.Progress) {
//	        fmt.Printf("[%s] %.0f%%\n", p.Step, p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the controller operations.
// A *slog.Logger satisfies the Logger interface.
//
// Example:
//
//	ctl := controller.New(dev, controller.WithLogger(slog.Default()))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithCommandDelay sets the pause after every command. Default is 20ms.
// A zero delay disables the pause, which is only useful with simulated devices.
//
// Example:
//
//	ctl := controller.New(dev, controller.WithCommandDelay(50*time.Millisecond))
func WithCommandDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.CommandDelay = delay
		}
	}
}

// WithSequenceTag sets the sequence byte stamped on catalog commands. Default is 0x00.
func WithSequenceTag(tag byte) Option {
	return func(c *Config) {
		c.SequenceTag = tag
	}
}

// WithStrictReplies makes reply read failures after write commands fatal.
//
// Example:
//
//	ctl := controller.New(dev, controller.WithStrictReplies(true))
func WithStrictReplies(strict bool) Option {
	return func(c *Config) {
		c.StrictReplies = strict
	}
}
