package main

import (
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/slides"
	"github.com/ayusman/mudra/internal/store"
)

var bindingsMode string

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "Print the gesture tables as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindingsMode != "" {
			if _, err := gesture.ParseMode(bindingsMode); err != nil {
				return err
			}
		}

		st, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		bindings, err := st.Bindings().List(bindingsMode)
		if err != nil {
			return err
		}
		pinches, err := st.Pinches().List(bindingsMode)
		if err != nil {
			return err
		}
		return printJSON(cmd, struct {
			Bindings []*store.Binding   `json:"bindings"`
			Pinches  []*store.PinchRule `json:"pinches"`
		}{bindings, pinches})
	},
}

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "List the slide decks under the presentation root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := slides.ListDecks(cfg.Presentation.Root)
		if err != nil {
			return err
		}
		return printJSON(cmd, names)
	},
}

func init() {
	bindingsCmd.Flags().StringVarP(&bindingsMode, "mode", "m", "", "only print this mode's table")
}
