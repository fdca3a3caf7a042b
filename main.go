package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"imbridge/pkg/config"
	"imbridge/pkg/focus"
	"imbridge/pkg/imbridge"
	"imbridge/pkg/journal"
	jsonstore "imbridge/pkg/journal/json"
	"imbridge/pkg/journal/memory"
	"imbridge/pkg/journal/sqlite"
	"imbridge/pkg/portal"
	"imbridge/pkg/reset"
	"imbridge/pkg/xkbregistry"
)

func main() {
	err := run()
	if err != nil {
		log.Fatalf("error: %+v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (default under XDG config dir)")
	hostPID := flag.Int("host-pid", os.Getppid(), "pid of the host application window owner")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := *configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return fmt.Errorf("default config path: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(*debug || cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	resolve := layoutResolver(cfg.EvdevXMLPath, logger)

	oracle := focus.Probe(*hostPID, logger)

	disabled := false

	resetter, err := reset.New(cfg.ResetMode, logger)
	switch {
	case errors.Is(err, portal.ErrNoSession):
		logger.Warn("no session bus, layout synchronization disabled")
		disabled = true
	case err != nil:
		return fmt.Errorf("create resetter: %w", err)
	}

	var toggler imbridge.InputMethodToggler
	if len(cfg.ToggleCommand) > 0 {
		toggler, err = reset.NewCommandToggler(cfg.ToggleCommand, logger)
		if err != nil {
			return fmt.Errorf("create toggler: %w", err)
		}
	} else {
		logger.Warn("toggle_command not configured, input method will not be toggled")
		toggler = reset.NewNopToggler(logger)
	}

	policy := imbridge.PolicyEchoFree
	if cfg.Policy == config.PolicyEchoing {
		policy = imbridge.PolicyEchoing
	}

	var deb *imbridge.Debouncer
	var sub *portal.Subscription
	if !disabled {
		deb = imbridge.NewDebouncer(policy, imbridge.LayoutID(resolve(cfg.AvoidLayout)), oracle, resetter, toggler, logger)

		store, err := openJournal(cfg.Journal, logger)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		if store != nil {
			defer store.Close()
			deb.SetJournal(store)
		}

		sub = portal.NewSubscription(deb.HandleEvent, logger)
		sub.Primer = deb.Prime

		err = sub.Register(ctx)
		switch {
		case errors.Is(err, portal.ErrNoSession):
			logger.Warn("no session bus, layout synchronization disabled")
			disabled = true
		case err != nil:
			return fmt.Errorf("register subscription: %w", err)
		}
	}

	if disabled {
		logger.Info("started imbridge (disabled mode)")
	} else {
		logger.Infow("started imbridge",
			"policy", cfg.Policy,
			"avoid_layout", deb.AvoidLayout(),
			"reset_mode", cfg.ResetMode,
		)
	}

	errChan := make(chan error, 3)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if disabled {
			<-ctx.Done()
			errChan <- ctx.Err()
			return
		}
		err := config.Watch(ctx, path, logger, func(c config.Config) {
			deb.SetAvoidLayout(imbridge.LayoutID(resolve(c.AvoidLayout)))
		})
		if err != nil {
			errChan <- fmt.Errorf("config watch: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := systemdNotifyLoop(ctx)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	err = <-errChan
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutting down")
		if sub != nil {
			sub.Unregister()
		}
		wg.Wait()
		return nil
	case err != nil:
		return err
	}

	return nil
}

// layoutResolver normalizes a configured layout name to its xkb code. When
// the registry cannot be read the configured value passes through as-is.
func layoutResolver(evdevXMLPath string, logger *zap.SugaredLogger) func(string) string {
	registry, err := xkbregistry.Parse(evdevXMLPath)
	if err != nil {
		logger.Warnw("xkb registry unavailable, using layout names verbatim", "error", err)
		return func(name string) string { return name }
	}

	return func(name string) string {
		if code := registry.Code(name); code != "" {
			return code
		}
		logger.Warnw("layout not found in xkb registry, using verbatim", "layout", name)
		return name
	}
}

type journalStore interface {
	imbridge.Journal
	journal.Store
}

func openJournal(backend string, logger *zap.SugaredLogger) (journalStore, error) {
	switch backend {
	case config.JournalOff:
		return nil, nil
	case config.JournalMemory:
		return memory.New(), nil
	case config.JournalJSON:
		path, err := config.JournalPath("journal.json")
		if err != nil {
			return nil, err
		}
		return jsonstore.New(path)
	case config.JournalSQLite:
		path, err := config.JournalPath("journal.db")
		if err != nil {
			return nil, err
		}
		return sqlite.New(path, logger)
	}
	return nil, fmt.Errorf("unknown journal backend %q", backend)
}

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Keeping input method and layout in agreement")

	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stdout"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if !debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
