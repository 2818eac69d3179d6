// Package shutdown runs registered cleanup hooks once, on demand or on
// SIGINT/SIGTERM.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/flanksource/commons/logger"
)

type hook struct {
	label string
	fn    func()
}

var (
	mu    sync.Mutex
	hooks []hook
	once  sync.Once
)

// AddHook registers a cleanup function. Hooks run in reverse registration
// order, like defers.
func AddHook(label string, fn func()) {
	mu.Lock()
	defer mu.Unlock()
	hooks = append(hooks, hook{label: label, fn: fn})
}

// Shutdown runs every registered hook once. A panicking hook is logged and
// the rest still run.
func Shutdown() {
	mu.Lock()
	pending := hooks
	hooks = nil
	mu.Unlock()

	for i := len(pending) - 1; i >= 0; i-- {
		h := pending[i]
		logger.Debugf("running shutdown hook: %s", h.label)
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("panic in shutdown hook %s: %v", h.label, r)
				}
			}()
			h.fn()
		}()
	}
}

// RecoverAndShutdown runs hooks even when the caller is unwinding from a
// panic. Defer it at the top of main.
func RecoverAndShutdown() {
	if r := recover(); r != nil {
		logger.Errorf("panic: %v", r)
		Shutdown()
		os.Exit(1)
	}
	Shutdown()
}

// WaitForInterrupt blocks until SIGINT or SIGTERM, runs the hooks and
// exits. A second signal forces an immediate exit.
func WaitForInterrupt() {
	once.Do(func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		sig := <-sigChan
		logger.Infof("received %s, shutting down", sig)

		go func() {
			<-sigChan
			logger.Warnf("force exit")
			os.Exit(1)
		}()

		Shutdown()
		os.Exit(0)
	})
}
