// cmd/swaad-chat/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"swaad-chat/internal/common/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "swaad-chat",
	Short: "Conversational food-ordering assistant",
	Long: `swaad-chat serves the chat agent, menu, JSON-UI tooling and checkout API,
and runs the Zeebe workers that assemble responses and place orders.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (defaults to configs/config.yaml plus config.<env>.yaml)")
	rootCmd.AddCommand(serveCmd, workerCmd, validateUICmd, indexMenuCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
