package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/config"
	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/icsexport"
	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/notion"
	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/schedule"
	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/server"
	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/state"
	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/waybar"
)

const usage = "usage: momoyama-schedule <status|future|past|refresh|export-ics PATH|serve|watch>"

func Run(ctx context.Context, args []string, cfg config.Runtime, stdout io.Writer, logger zerolog.Logger) error {
	cmd, path, err := parseArgs(args)
	if err != nil {
		return err
	}

	svc := newService(cfg, logger)

	switch cmd {
	case "serve":
		return serve(ctx, cfg, svc, logger)
	case "watch":
		return watch(ctx, cfg, svc, logger)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout(cfg))
	defer cancel()

	switch cmd {
	case "status":
		return writeOutput(stdout, buildStatus(ctx, cfg, svc))
	case "future":
		return writeJSON(stdout, svc.FutureSchedule(ctx))
	case "past":
		return writeJSON(stdout, svc.PastEventsByMonth(ctx))
	case "refresh":
		return refresh(ctx, cfg, svc)
	case "export-ics":
		return exportICS(ctx, svc, path)
	default:
		return fmt.Errorf("unsupported command %q", cmd)
	}
}

func parseArgs(args []string) (command string, path string, err error) {
	if len(args) == 0 {
		return "status", "", nil
	}

	switch strings.TrimSpace(args[0]) {
	case "status", "future", "past", "refresh", "serve", "watch":
		if len(args) > 1 {
			return "", "", fmt.Errorf("unexpected argument %q", args[1])
		}
		return strings.TrimSpace(args[0]), "", nil
	case "export-ics":
		if len(args) != 2 || strings.TrimSpace(args[1]) == "" {
			return "", "", fmt.Errorf("usage: momoyama-schedule export-ics <path>")
		}
		return "export-ics", strings.TrimSpace(args[1]), nil
	default:
		return "", "", errors.New(usage)
	}
}

func newService(cfg config.Runtime, logger zerolog.Logger) *schedule.Service {
	client := notion.NewClient(notion.Options{
		BaseURL:           cfg.APIURL,
		APIKey:            cfg.APIKey,
		Version:           cfg.NotionVersion,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})

	return schedule.NewService(client, schedule.Options{
		DatabaseID:     cfg.DatabaseID,
		Properties:     schedule.PropertyNames(cfg.Properties),
		FuturePageSize: cfg.PageSize,
		Locale:         schedule.ResolveLocale(cfg.Locale),
		Logger:         logger,
	})
}

// commandTimeout bounds one-shot commands; a fallback query may follow a
// rejected primary query.
func commandTimeout(cfg config.Runtime) time.Duration {
	timeout := 2*cfg.Timeout + 5*time.Second
	if timeout < 10*time.Second {
		timeout = 10 * time.Second
	}
	return timeout
}

func buildStatus(ctx context.Context, cfg config.Runtime, svc *schedule.Service) waybar.Output {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return waybar.RenderUnknown(fmt.Sprintf("Set NOTION_API_KEY in %s", cfg.ConfigFile))
	}
	if strings.TrimSpace(cfg.DatabaseID) == "" {
		return waybar.RenderUnknown(fmt.Sprintf("Set NOTION_SCHEDULE_DATABASE_ID in %s", cfg.ConfigFile))
	}

	now := time.Now()
	result, err := svc.FetchFuture(ctx, now)
	if notion.IsUnauthorized(err) {
		return waybar.RenderError(fmt.Sprintf("Notion rejected NOTION_API_KEY from %s: %s", cfg.ConfigFile, err.Error()))
	}
	if err != nil {
		return waybar.RenderError(fmt.Sprintf("Schedule query failed: %s", err.Error()))
	}
	return waybar.Render(result, now)
}

func fetchBoth(ctx context.Context, svc *schedule.Service) (schedule.FutureSchedule, []schedule.MonthGroup) {
	now := time.Now()

	var (
		future schedule.FutureSchedule
		past   []schedule.MonthGroup
		wg     conc.WaitGroup
	)
	wg.Go(func() { future = svc.FutureScheduleAt(ctx, now) })
	wg.Go(func() { past = svc.PastEventsByMonthAt(ctx, now) })
	wg.Wait()

	return future, past
}

func refresh(ctx context.Context, cfg config.Runtime, svc *schedule.Service) error {
	if err := state.EnsureDirs(cfg.StateDir, cfg.MenuDir); err != nil {
		return err
	}

	future, past := fetchBoth(ctx, svc)
	if err := state.SaveSnapshot(cfg.SnapshotPath, state.Snapshot{
		GeneratedAt: time.Now().UTC(),
		Future:      future,
		Past:        past,
	}); err != nil {
		return err
	}

	return state.WriteMenu(cfg.MenuPath, state.MenuData{
		StatusLine: "No upcoming events",
		Next:       future.NextUp,
		Groups:     future.MonthlyEvents,
	})
}

func exportICS(ctx context.Context, svc *schedule.Service, path string) error {
	future, past := fetchBoth(ctx, svc)
	events := append(future.Events(), schedule.Flatten(past)...)

	var buf bytes.Buffer
	if err := icsexport.Write(&buf, events, "Schedule", time.Now()); err != nil {
		return err
	}
	return state.WriteFileAtomically(path, buf.Bytes())
}

func serve(ctx context.Context, cfg config.Runtime, svc *schedule.Service, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.NewRouter(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info().Msg("http server stopped")
	return nil
}

func watch(ctx context.Context, cfg config.Runtime, svc *schedule.Service, logger zerolog.Logger) error {
	log := logger.With().Str("component", "watch").Logger()

	runOnce := func() {
		runCtx, cancel := context.WithTimeout(ctx, commandTimeout(cfg))
		defer cancel()
		if err := refresh(runCtx, cfg, svc); err != nil {
			log.Error().Err(err).Msg("refresh failed")
			return
		}
		log.Debug().Str("snapshot", cfg.SnapshotPath).Msg("refresh complete")
	}

	// Refreshes write the same files, so an overrunning run skips the next tick.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.RefreshCron, runOnce); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", cfg.RefreshCron, err)
	}

	runOnce()
	c.Start()
	log.Info().Str("cron", cfg.RefreshCron).Msg("watching schedule")

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("watch stopped")
	return nil
}

func writeOutput(w io.Writer, output waybar.Output) error {
	payload, err := waybar.Encode(output)
	if err != nil {
		return err
	}
	return writeLine(w, payload)
}

func writeJSON(w io.Writer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	return writeLine(w, payload)
}

func writeLine(w io.Writer, payload []byte) error {
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write trailing newline: %w", err)
	}
	return nil
}
