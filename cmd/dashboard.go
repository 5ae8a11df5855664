package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lmx/internal/dashboard"
	"github.com/desertthunder/lmx/internal/formatter"
	"github.com/desertthunder/lmx/internal/metrics"
	"github.com/desertthunder/lmx/internal/models"
	"github.com/desertthunder/lmx/internal/server"
	"github.com/desertthunder/lmx/internal/shared"
	"github.com/desertthunder/lmx/internal/ui"
	"github.com/desertthunder/lmx/internal/web"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.client, fileLogger)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// Status fetches the status once and prints the dashboard in the requested format.
//
// A failed fetch still prints the dashboard, error banner included, before returning the error.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	outputPath := cmd.String("output")

	status, fetchErr := r.client.Status(ctx)
	view := dashboard.Project(dashboard.NewState().ApplyPoll(status, fetchErr))

	if outputPath != "" {
		if err := formatter.WriteReport(view, format, outputPath); err != nil {
			return err
		}
		r.logger.Info("report written", "path", outputPath, "format", format)
	} else {
		data, err := formatter.Render(view, format)
		if err != nil {
			return err
		}
		if err := r.writeBytes(data); err != nil {
			return err
		}
	}

	if fetchErr != nil {
		return fmt.Errorf("%s: %w", dashboard.MsgFetchFailed, fetchErr)
	}
	return nil
}

// Watch runs a polling session and prints a line each time the dashboard changes.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	count := int(cmd.Int("count"))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	seen := 0
	onChange := func(s dashboard.State) {
		mu.Lock()
		defer mu.Unlock()
		if count > 0 && seen >= count {
			return
		}
		if err := r.writePlain("%s\n", formatter.ViewToLine(dashboard.Project(s), time.Now())); err != nil {
			r.logger.Error("failed to write update", "error", err)
		}
		seen++
		if count > 0 && seen >= count {
			cancel()
		}
	}

	session := dashboard.NewSession(r.client, dashboard.WithLogger(r.logger), dashboard.WithOnChange(onChange))

	r.logger.Info("watching migration", "backend", r.config.Backend.URL, "interval", dashboard.PollInterval)
	err := session.Run(ctx)
	session.Wait()
	return err
}

// Control returns the action for a one-shot start, pause or resume request.
//
// Without --force the current status is fetched first and the request is refused unless that control is offered.
func (r *Runner) Control(c models.Control) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if !cmd.Bool("force") {
			status, err := r.client.Status(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", dashboard.MsgFetchFailed, err)
			}
			if available := models.ControlFor(status.State); available != c {
				return fmt.Errorf("%w: cannot %s while %s", shared.ErrControlUnavailable, c, displayState(status.State))
			}
		}

		r.logger.Info("sending control request", "action", c)
		if err := r.client.Act(ctx, c); err != nil {
			return fmt.Errorf("%s: %w", dashboard.ActionErrorMessage(c), err)
		}

		return r.writePlain("✓ %s requested\n", c.Label())
	}
}

// Web serves the HTML dashboard until interrupted.
func (r *Runner) Web(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.New()
	session := dashboard.NewSession(r.client,
		dashboard.WithLogger(shared.WithLogger(r.logger, "component", "session")),
		dashboard.WithObserver(collector),
	)

	app, err := web.New(session, web.Options{
		Logger:  shared.WithLogger(r.logger, "component", "web"),
		Metrics: collector.Handler(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	polling := make(chan struct{})
	go func() {
		defer close(polling)
		session.Run(ctx)
	}()
	defer func() {
		cancel()
		<-polling
	}()

	ready := make(chan string, 1)
	if cmd.Bool("open") {
		go func() {
			select {
			case bound := <-ready:
				url := "http://" + bound
				if err := shared.OpenBrowser(url); err != nil {
					r.logger.Warn("failed to open browser", "url", url, "error", err)
				}
			case <-ctx.Done():
			}
		}()
	}

	r.logger.Info("serving dashboard", "backend", r.config.Backend.URL)
	return server.Serve(ctx, addr, app, r.logger, ready)
}

func displayState(state models.MigrationState) string {
	if state == "" {
		return "state is unknown"
	}
	return string(state)
}
