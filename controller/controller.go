package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/moffa90/go-lcr4500/protocol"
	"periph.io/x/conn/v3"
)

// Channel is the transport to a DLPC350. Writes carry exactly one
// protocol.PacketSize packet; reads return up to n bytes from the endpoint.
//
// The usb package provides an implementation on top of the HID interface.
// Tests and simulators can implement it directly.
type Channel interface {
	Write(endpoint byte, packet []byte) error
	Read(endpoint byte, n int) ([]byte, error)
}

// sequenceState is the pattern sequence state last commanded by the controller.
type sequenceState int

const (
	sequenceUnknown sequenceState = iota
	sequenceStopped
	sequencePaused
	sequenceRunning
)

func (s sequenceState) String() string {
	switch s {
	case sequenceStopped:
		return "stopped"
	case sequencePaused:
		return "paused"
	case sequenceRunning:
		return "running"
	}
	return "unknown"
}

// Controller drives a DLPC350 display controller over a Channel.
// Every command blocks until its reply is read back and the command delay
// has elapsed.
//
// Send is serialized, so concurrent callers cannot interleave packets, but
// the orchestrated procedures assume a single caller.
type Controller struct {
	channel Channel
	config  Config

	mu       sync.Mutex
	failed   error
	mailbox  protocol.Mailbox
	sequence sequenceState
}

var _ conn.Resource = (*Controller)(nil)

// New creates a new Controller with the given channel and options.
//
// Example:
//
//	dev, _ := usb.Open(0)
//	defer dev.Close()
//	ctl := controller.New(dev,
//	    controller.WithLogger(slog.Default()),
//	    controller.WithCommandDelay(20*time.Millisecond),
//	)
func New(ch Channel, opts ...Option) *Controller {
	if ch == nil {
		panic("channel cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Controller{
		channel: ch,
		config:  cfg,
	}
}

// String implements conn.Resource.
func (c *Controller) String() string {
	if s, ok := c.channel.(fmt.Stringer); ok {
		return "DLPC350(" + s.String() + ")"
	}
	return "DLPC350"
}

// Halt implements conn.Resource. It stops the pattern sequence.
func (c *Controller) Halt() error {
	return c.PatternDisplay(context.Background(), protocol.ActionStop)
}

// Send frames cmd, writes every packet to protocol.EndpointOut, reads the
// reply from protocol.EndpointIn and waits for the command delay.
//
// A failed packet write returns a *TransportError and marks the controller
// as failed; every later call returns ErrChannelFailed. A failed reply read
// returns a *TransportError with Transmitted set, since the command already
// reached the controller. If the reply carries the error flag,
// a *protocol.CommandError is returned together with the reply.
func (c *Controller) Send(ctx context.Context, cmd protocol.Command) (protocol.Reply, error) {
	var reply protocol.Reply

	if err := ctx.Err(); err != nil {
		return reply, fmt.Errorf("cancelled: %w", err)
	}

	packets, err := protocol.Packets(cmd)
	if err != nil {
		return reply, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failed != nil {
		return reply, fmt.Errorf("%w: %v", ErrChannelFailed, c.failed)
	}

	for i, packet := range packets {
		if err := c.channel.Write(protocol.EndpointOut, packet); err != nil {
			terr := &TransportError{
				Op:       "write",
				Endpoint: protocol.EndpointOut,
				Packet:   i,
				Err:      err,
			}
			c.failed = terr
			c.logError("packet write failed", "cmd", cmd.String(), "packet", i, "error", err)
			return reply, terr
		}
	}

	c.logDebug("command sent", "cmd", cmd.String(), "packets", len(packets))

	buf, rerr := c.channel.Read(protocol.EndpointIn, protocol.ReplySize)
	if rerr == nil {
		reply, rerr = protocol.ParseReply(buf)
	}

	if err := c.wait(ctx); err != nil {
		return reply, err
	}

	if rerr != nil {
		return reply, &TransportError{
			Op:          "read",
			Endpoint:    protocol.EndpointIn,
			Transmitted: true,
			Err:         rerr,
		}
	}

	return reply, reply.Err(cmd)
}

// exec stamps the sequence tag on cmd and sends it. Reply read failures
// after write commands are logged and tolerated unless StrictReplies is set.
func (c *Controller) exec(ctx context.Context, op string, cmd protocol.Command) (protocol.Reply, error) {
	cmd.Sequence = c.config.SequenceTag

	reply, err := c.Send(ctx, cmd)
	if err != nil {
		if cmd.Direction == protocol.Write && !c.config.StrictReplies && IsRecoverable(err) {
			c.logError("no reply, continuing", "op", op, "error", err)
			return reply, nil
		}
		return reply, fmt.Errorf("%s: %w", op, err)
	}

	return reply, nil
}

// query sends cmd like exec but never tolerates a missing reply, for
// commands whose result is carried by the reply.
func (c *Controller) query(ctx context.Context, op string, cmd protocol.Command) (protocol.Reply, error) {
	cmd.Sequence = c.config.SequenceTag

	reply, err := c.Send(ctx, cmd)
	if err != nil {
		return reply, fmt.Errorf("%s: %w", op, err)
	}
	return reply, nil
}

// wait pauses for the command delay or until ctx is done.
func (c *Controller) wait(ctx context.Context) error {
	if c.config.CommandDelay <= 0 {
		return nil
	}

	t := time.NewTimer(c.config.CommandDelay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cancelled: %w", ctx.Err())
	}
}

func (c *Controller) state() (protocol.Mailbox, sequenceState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mailbox, c.sequence
}

func (c *Controller) setMailbox(m protocol.Mailbox) {
	c.mu.Lock()
	c.mailbox = m
	c.mu.Unlock()
}

func (c *Controller) setSequence(s sequenceState) {
	c.mu.Lock()
	c.sequence = s
	c.mu.Unlock()
}

// reportProgress calls the progress callback if configured.
func (c *Controller) reportProgress(progress Progress) {
	if c.config.ProgressCallback != nil {
		c.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (c *Controller) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Controller) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Controller) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
