// Package signal turns OS interrupts and internal shutdown requests into a
// single shutdown channel the daemon can wait on.
package signal

import (
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// ErrAlreadyIntercepting is returned by Intercept while another Interceptor
// is still running.
var ErrAlreadyIntercepting = errors.New("signal interception already active")

// running is set while an Interceptor's handler goroutine is alive.
var running atomic.Bool

// shutdownSignals are the OS signals that stop the daemon.
var shutdownSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGABRT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// Interceptor funnels OS signals and RequestShutdown calls into one shutdown
// event. Copies share the same channels.
type Interceptor struct {
	signals chan os.Signal

	// requests carries RequestShutdown calls to the handler.
	requests chan struct{}

	// stopping is closed by the handler once the first shutdown trigger
	// arrived, later triggers are dropped.
	stopping chan struct{}

	// done is closed when the handler has exited.
	done chan struct{}
}

// Intercept installs the signal handler. Only one Interceptor can run at a
// time, a new one can be created after the previous one shut down.
func Intercept() (Interceptor, error) {
	if !running.CompareAndSwap(false, true) {
		return Interceptor{}, ErrAlreadyIntercepting
	}

	i := Interceptor{
		signals:  make(chan os.Signal, 1),
		requests: make(chan struct{}),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
	signal.Notify(i.signals, shutdownSignals...)

	go i.handle()

	return i, nil
}

// handle waits for the first shutdown trigger and then closes done.
func (i *Interceptor) handle() {
	defer running.Store(false)

	select {
	case sig := <-i.signals:
		log.Infof("Received %v, shutting down", sig)

	case <-i.requests:
		log.Infof("Shutdown requested")
	}

	signal.Stop(i.signals)
	close(i.stopping)

	log.Infof("Gracefully shutting down")
	close(i.done)
}

// Alive reports whether no shutdown has been triggered yet.
func (i *Interceptor) Alive() bool {
	select {
	case <-i.stopping:
		return false

	default:
		return true
	}
}

// RequestShutdown triggers a graceful shutdown. Calls made after the first
// trigger return immediately.
func (i *Interceptor) RequestShutdown() {
	select {
	case i.requests <- struct{}{}:
	case <-i.stopping:
		log.Debugf("Already shutting down")
	}
}

// ShutdownChannel returns a channel that is closed once the shutdown
// completed.
func (i *Interceptor) ShutdownChannel() <-chan struct{} {
	return i.done
}
