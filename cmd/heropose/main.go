// Command heropose recognizes superhero poses from the webcam and shows the
// matching reference image.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/heropose/internal/app"
	"github.com/ayusman/heropose/internal/capture"
	"github.com/ayusman/heropose/internal/config"
	"github.com/ayusman/heropose/internal/detector"
	"github.com/ayusman/heropose/internal/display"
	"github.com/ayusman/heropose/internal/gesture"
	"github.com/ayusman/heropose/internal/publish"
	"github.com/ayusman/heropose/internal/server"
	"github.com/ayusman/heropose/internal/store"
	"github.com/ayusman/heropose/internal/theme"
	"github.com/ayusman/heropose/internal/tray"
)

const minPanelWidth = 320

func main() {
	if err := run(); err != nil {
		slog.Error("heropose failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "config file (default ~/.heropose/config.yaml)")
		themeName  = flag.String("theme", "", "built-in theme name: "+fmt.Sprint(theme.Names()))
		mode       = flag.String("mode", "", "display mode: window, tray or headless")
		cameraID   = flag.Int("camera", -1, "camera device index")
		addr       = flag.String("addr", "", "HTTP listen address, \"off\" to disable")
		debug      = flag.Bool("debug", false, "draw per-rule debug flags")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *themeName != "" {
		cfg.Theme.Name = *themeName
		cfg.Theme.File = ""
	}
	if *mode != "" {
		cfg.Display.Mode = *mode
	}
	if *cameraID >= 0 {
		cfg.Camera.Device = *cameraID
	}
	switch *addr {
	case "":
	case "off":
		cfg.Server.Addr = ""
	default:
		cfg.Server.Addr = *addr
	}
	if *debug {
		cfg.Display.DebugOverlay = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	th, err := cfg.LoadTheme()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	pub := newPublisher(cfg.Publish)
	det := newDetector(cfg.Detector)
	hub := server.NewHub()

	var panel *display.Panel
	if cfg.Display.Mode == config.ModeWindow {
		panel = display.NewPanel(th, panelWidth(cfg), cfg.Display.Height)
		defer panel.Close()
	}

	a, err := app.New(app.Config{
		Camera:      capture.NewCamera(cfg.Camera),
		Detector:    det,
		Classifier:  gesture.NewClassifier(cfg.Thresholds),
		Theme:       th,
		Store:       st,
		Publisher:   pub,
		Broadcaster: hub,
		Panel:       panel,
		Interval:    cfg.Pipeline.Interval,
		Debug:       cfg.Display.DebugOverlay,
		AssetsDir:   cfg.Theme.AssetsDir,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if *themeName == "" {
		if err := a.RestoreSettings(); err != nil {
			slog.Warn("settings not restored", "error", err)
		}
	}

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	srvCfg := server.Config{
		StaticDir:  staticDir,
		Store:      st,
		Pipeline:   a,
		Classifier: a.Classifier(),
		Hub:        hub,
	}
	if latest, ok := pub.(publish.LatestSource); ok {
		srvCfg.Published = latest
	}
	srv := server.New(srvCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Server.Addr != "" {
		g.Go(func() error { return srv.Run(gctx, cfg.Server.Addr) })
	}

	slog.Info("heropose starting", "mode", cfg.Display.Mode, "theme", a.Theme().Name, "camera", cfg.Camera.Device)

	switch cfg.Display.Mode {
	case config.ModeHeadless:
		g.Go(func() error { return a.Run(gctx) })

	case config.ModeTray:
		runTray(gctx, stop, g, a, cfg.Server.Addr)

	case config.ModeWindow:
		werr := runWindow(gctx, a, panel, cfg)
		stop()
		if werr != nil {
			g.Wait()
			return werr
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runTray blocks the main goroutine in the tray loop while the pipeline runs
// in g.
func runTray(ctx context.Context, stop context.CancelFunc, g *errgroup.Group, a *app.App, addr string) {
	tr := tray.New(theme.Names(), a.Theme().Name)
	tr.SetEnabled(a.IsEnabled())
	tr.OnToggle(a.SetEnabled)
	tr.OnTheme(func(name string) {
		if err := a.SetTheme(name); err != nil {
			slog.Warn("theme switch failed", "theme", name, "error", err)
		}
	})
	tr.OnDashboard(func() {
		if addr == "" {
			slog.Warn("dashboard unavailable, HTTP server disabled")
			return
		}
		if err := openBrowser("http://" + addr); err != nil {
			slog.Warn("failed to open browser", "error", err)
		}
	})
	tr.OnQuit(stop)
	a.OnChange(func(current, _ gesture.Label, entry theme.Entry) {
		tr.SetLast(current, entry)
	})

	g.Go(func() error {
		err := a.Run(ctx)
		stop()
		return err
	})
	go func() {
		<-ctx.Done()
		tr.Quit()
	}()
	tr.Run()
}

// runWindow drives the pipeline from the main goroutine, which highgui
// requires, until the window is closed or ctx is done.
func runWindow(ctx context.Context, a *app.App, panel *display.Panel, cfg config.Config) error {
	if err := a.Camera().Open(ctx); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	win := display.NewWindow(a.Theme().Title, panel, cfg.Display.Width, cfg.Display.Height)
	defer win.Close()

	delay := int(cfg.Pipeline.Interval / time.Millisecond)
	if delay < 1 {
		delay = 1
	}

	for ctx.Err() == nil {
		out, err := a.Step(ctx)
		if err != nil {
			if errors.Is(err, capture.ErrCameraNotOpen) {
				return err
			}
			slog.Debug("frame skipped", "error", err)
			if win.Poll(delay) {
				return nil
			}
			continue
		}

		win.Show(*out.Frame)
		out.Close()

		if win.Poll(delay) {
			return nil
		}
	}
	return nil
}

func panelWidth(cfg config.Config) int {
	camW, camH := cfg.Camera.Width, cfg.Camera.Height
	if camW <= 0 || camH <= 0 {
		camW, camH = capture.DefaultWidth, capture.DefaultHeight
	}
	w := cfg.Display.Width - camW*cfg.Display.Height/camH
	if w < minPanelWidth {
		w = minPanelWidth
	}
	return w
}

func newPublisher(cfg publish.Config) publish.Publisher {
	p, ok := publish.New(cfg).(*publish.RedisPublisher)
	if !ok {
		return publish.Nop{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = publish.DefaultConfig().Timeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		slog.Warn("redis unreachable, label changes will not be published", "addr", cfg.Addr, "error", err)
		p.Close()
		return publish.Nop{}
	}
	slog.Info("publishing label changes", "addr", cfg.Addr, "channel", cfg.Channel)
	return p
}

func newDetector(cfg detector.Config) detector.Detector {
	mp, err := detector.NewMediaPipeDetector(cfg)
	if err != nil {
		slog.Warn("MediaPipe not available, every frame will classify as default", "error", err)
		return detector.NewMockDetector()
	}
	slog.Info("using MediaPipe landmark detection")
	return mp
}

// findWebDir searches for the dashboard directory in common locations.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(config.DataDir(), "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
