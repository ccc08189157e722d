package automount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/pilebones/go-udev/netlink"

	"sirikali/internal/logging"
)

const lockFileName = "automount.lock"

// ErrAlreadyRunning is returned when another watcher holds the lock.
var ErrAlreadyRunning = errors.New("another automount watcher is already running")

// Trigger is run after block devices settle.
type Trigger interface {
	MountAvailable(ctx context.Context) ([]Outcome, error)
}

// Watcher listens for udev block-device events and triggers automatic
// mounting once the devices have settled.
type Watcher struct {
	trigger Trigger
	settle  time.Duration
	logger  *slog.Logger
	lock    *flock.Flock

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	done    chan struct{}
	running bool
}

// NewWatcher creates a watcher whose instance lock lives in lockDir.
func NewWatcher(trigger Trigger, settle time.Duration, lockDir string, logger *slog.Logger) *Watcher {
	return &Watcher{
		trigger: trigger,
		settle:  settle,
		logger:  logging.NewComponentLogger(logger, "automount-watcher"),
		lock:    flock.New(filepath.Join(lockDir, lockFileName)),
	}
}

// Start takes the instance lock and begins listening for events.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	if err := w.acquire(); err != nil {
		return err
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		_ = w.lock.Unlock()
		return fmt.Errorf("connect netlink socket: %w", err)
	}

	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, buildMatcher())

	w.conn = conn
	w.quit = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true

	quit, done := w.quit, w.done
	go func() {
		defer close(done)
		defer close(monitorQuit)
		w.loop(ctx, quit, queue, errs)
	}()

	w.logger.Info("automount watcher started",
		logging.String(logging.FieldEventType, "automount_watcher_started"),
		logging.Duration("settle_delay", w.settle),
	)
	return nil
}

// Stop shuts the watcher down and releases the instance lock.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.quit)
	<-w.done
	_ = w.conn.Close()
	_ = w.lock.Unlock()
	w.conn = nil
	w.quit = nil
	w.running = false

	w.logger.Info("automount watcher stopped",
		logging.String(logging.FieldEventType, "automount_watcher_stopped"),
	)
}

// Running reports whether the watcher is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Run starts the watcher and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

func (w *Watcher) acquire() error {
	if err := os.MkdirAll(filepath.Dir(w.lock.Path()), 0o700); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	return nil
}

// loop debounces events: a burst of uevents triggers one mount pass, settle
// after the last event.
func (w *Watcher) loop(ctx context.Context, quit <-chan struct{}, events <-chan netlink.UEvent, errs <-chan error) {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case ev := <-events:
			w.logger.Debug("block device event",
				logging.String("action", string(ev.Action)),
				logging.String("device", ev.Env["DEVNAME"]),
			)
			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				timer.Reset(w.settle)
			}
			fire = timer.C
		case err := <-errs:
			logging.WarnWithContext(w.logger, "netlink monitor error", "netlink_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "device events may be missed"),
			)
		case <-fire:
			fire = nil
			w.run(ctx)
		}
	}
}

func (w *Watcher) run(ctx context.Context) {
	if w.trigger == nil {
		return
	}
	outcomes, err := w.trigger.MountAvailable(ctx)
	if err != nil {
		logging.WarnWithContext(w.logger, "automount pass failed", "automount_pass_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the favorites directory"),
			logging.String(logging.FieldImpact, "volumes not auto-mounted"),
		)
		return
	}
	w.logger.Debug("automount pass finished", logging.Int("volumes", len(outcomes)))
}

// buildMatcher matches block devices being added or changed.
func buildMatcher() netlink.Matcher {
	action := "add|change"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "block",
		},
	})
	return rules
}
