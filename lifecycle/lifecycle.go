// Package lifecycle stops a server when the process is asked to exit.
//
// A Controller moves through Running, Stopping and Stopped exactly once.
// The trigger is usually an OS signal, but Trigger can be called directly,
// which keeps the controller testable without sending real signals.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

type State string

const (
	Running  State = "running"
	Stopping State = "stopping"
	Stopped  State = "stopped"
)

func (s State) advance() State {
	switch s {
	case Running:
		return Stopping
	case Stopping:
		return Stopped
	default:
		panic("invalid lifecycle state advance: " + s)
	}
}

// Stopper is implemented by *server.Server.
type Stopper interface {
	Stop(force bool) error
}

// Controller drives the shutdown of a single Stopper.
type Controller struct {
	stopper Stopper
	logger  *zap.Logger

	mu    sync.Mutex
	state State
	err   error
	done  chan struct{}
}

// New returns a controller in the Running state.
func New(s Stopper, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		stopper: s,
		logger:  logger,
		state:   Running,
		done:    make(chan struct{}),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the controller reaches Stopped.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Err returns the error of the stop call. It is nil until Done is closed.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Trigger force-stops the server and blocks until it is stopped. Only the
// first call has an effect; it reports whether this call did the work.
func (c *Controller) Trigger(reason string) bool {
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return false
	}
	c.state = c.state.advance()
	c.mu.Unlock()

	c.logger.Info("shutting down http/1 server", zap.String("reason", reason))
	err := c.stopper.Stop(true)
	if err != nil {
		c.logger.Error("unable to stop http/1 server", zap.Error(err))
	}

	c.mu.Lock()
	c.err = err
	c.state = c.state.advance()
	c.mu.Unlock()

	close(c.done)
	return true
}

func signalName(sig os.Signal) string {
	switch sig {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return sig.String()
}

// Run waits for a signal on signals, for ctx to be cancelled, or for another
// goroutine to call Trigger. The server is stopped in the first two cases.
// Run returns once the controller is Stopped, with the result of the stop.
func (c *Controller) Run(ctx context.Context, signals <-chan os.Signal) error {
	select {
	case sig := <-signals:
		c.Trigger("received " + signalName(sig) + " signal")
	case <-ctx.Done():
		c.Trigger("context done: " + ctx.Err().Error())
	case <-c.done:
	}

	<-c.done
	return c.Err()
}

// Notify is Run fed by the process signals sigs, SIGINT when none are given.
func (c *Controller) Notify(ctx context.Context, sigs ...os.Signal) error {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT}
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	defer signal.Stop(ch)

	return c.Run(ctx, ch)
}
