package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/tray"
)

var withTray bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP control surface",
	Long:  `Serve the REST API, the gesture event socket and the preview streams. With --tray a system tray menu controls sessions too.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newServices(cfg, log)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events := server.NewEventHub(log)
		defer events.Close()
		rt.ctrl.AddObserver(events)

		srv := server.New(server.Config{
			StaticDir:  staticDir(cfg.Server.StaticDir),
			Store:      rt.store,
			Controller: rt.ctrl,
			Feeds:      rt.feeds,
			Events:     events,
			Plugins:    rt.plugins,
			DeckRoot:   cfg.Presentation.Root,
			Logger:     log,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe(ctx, cfg.Server.Addr)
			stop()
		}()

		if withTray {
			t := newTray(rt.ctrl, "http://"+browseAddr(cfg.Server.Addr))
			rt.ctrl.AddObserver(t)
			go func() {
				<-ctx.Done()
				t.Quit()
			}()
			go trackStatus(ctx, rt.ctrl, t)
			t.OnQuit(stop)
			t.Run()
		} else {
			<-ctx.Done()
		}
		stop()

		rt.ctrl.Stop()
		waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.ctrl.Wait(waitCtx); err != nil {
			log.WithError(err).Warn("session did not stop in time")
		}
		return <-errCh
	},
}

func init() {
	serveCmd.Flags().BoolVar(&withTray, "tray", false, "show the system tray menu")
}

func newTray(ctrl *session.Controller, settingsURL string) *tray.Tray {
	t := tray.New()
	t.OnStart(func(mode gesture.Mode) {
		res, err := ctrl.Start(session.StartRequest{Mode: string(mode)})
		if err != nil {
			log.WithError(err).WithField("mode", mode).Warn("tray start failed")
			return
		}
		if res.Status == session.ResultStarted {
			t.SetRunning(mode)
		}
	})
	t.OnStop(func() {
		ctrl.Stop()
	})
	t.OnSettings(func() {
		if err := openBrowser(settingsURL); err != nil {
			log.WithError(err).Warn("failed to open settings")
		}
	})
	return t
}

// trackStatus mirrors the controller state into the tray, covering sessions
// started over HTTP and sessions that end on their own.
func trackStatus(ctx context.Context, ctrl *session.Controller, t *tray.Tray) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := ctrl.Status()
			mode := gesture.Mode("")
			if st.State == session.StateRunning {
				mode = st.Mode
			}
			if t.Running() != mode {
				t.SetRunning(mode)
			}
		}
	}
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

// browseAddr turns a listen address into one a browser can reach.
func browseAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// staticDir returns dir when it exists, searching a few parent directories
// for relative paths so `go run` works from the module root or below.
func staticDir(dir string) string {
	if dir == "" {
		return ""
	}
	candidates := []string{dir}
	if !strings.HasPrefix(dir, "/") {
		candidates = append(candidates, "../"+dir, "../../"+dir)
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
	}
	log.WithField("dir", dir).Debug("static directory not found; serving the API only")
	return ""
}
