package main

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
)

var (
	configPath string
	verbose    bool

	cfg *config.Config
	log = logrus.StandardLogger()
)

var rootCmd = &cobra.Command{
	Use:   "mudra",
	Short: "Webcam gesture control",
	Long:  `Mudra watches the webcam for hand and eye gestures and turns them into pointer, slide and caption actions.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := c.Log.ConfigureLogger(log, verbose); err != nil {
			return fmt.Errorf("log config: %w", err)
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, runCmd, bindingsCmd, decksCmd)
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
