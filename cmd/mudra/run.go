package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/session"
)

var (
	runMode string
	runDeck string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one session in the foreground",
	Long:  `Run a session in the given mode until interrupted, or in the last mode started when --mode is omitted. Sign-language captions are printed to stdout.`,
	Example: `  mudra run --mode virtual-mouse
  mudra run --mode presentation --deck quarterly-review
  mudra run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runMode != "" {
			if _, err := gesture.ParseMode(runMode); err != nil {
				return err
			}
		}

		rt, err := newServices(cfg, log)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		rt.ctrl.AddCaptionSink(dispatch.CaptionFunc(func(_ gesture.Label, text string) {
			fmt.Fprintln(out, text)
		}))
		rt.ctrl.AddObserver(session.ObserverFunc(func(ev gesture.Event) {
			log.WithFields(logrus.Fields{
				"label": ev.Label,
				"phase": ev.Phase,
				"x":     ev.Position.X,
				"y":     ev.Position.Y,
			}).Debug("gesture")
		}))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := rt.ctrl.Start(session.StartRequest{Mode: runMode, Deck: runDeck})
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"mode": rt.ctrl.Status().Mode, "session": res.ID}).Info("session started; press Ctrl+C to stop")

		ended := make(chan struct{})
		go func() {
			_ = rt.ctrl.Wait(context.Background())
			close(ended)
		}()

		select {
		case <-ctx.Done():
			rt.ctrl.Stop()
			waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			select {
			case <-ended:
			case <-waitCtx.Done():
				return fmt.Errorf("session did not stop: %w", waitCtx.Err())
			}
		case <-ended:
		}

		if last := rt.ctrl.Status().LastError; last != "" {
			return fmt.Errorf("session ended: %s", last)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "session mode: virtual-mouse, drag-drop, presentation, sign-language or eye-mouse (defaults to the last one used)")
	runCmd.Flags().StringVarP(&runDeck, "deck", "d", "", "slide deck for presentation mode (defaults to the last one used)")
}
