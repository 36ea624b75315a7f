package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"swaad-chat/internal/common/logger"
	"swaad-chat/internal/jsonui"
)

var renderHTML bool

var validateUICmd = &cobra.Command{
	Use:   "validate-ui <file|->",
	Short: "Validate a JSON-UI document and optionally render it to HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		return validateUI(cmd.OutOrStdout(), data, renderHTML)
	},
}

var indexMenuCmd = &cobra.Command{
	Use:   "index-menu",
	Short: "Load the configured menu and index it into elasticsearch",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Menu.SearchBackend != "elasticsearch" {
			return fmt.Errorf("menu.search_backend is %q; set it to elasticsearch to index", cfg.Menu.SearchBackend)
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		svc, err := a.buildMenu(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d items into %s\n", svc.Count(), cfg.Menu.Index)
		return nil
	},
}

func init() {
	validateUICmd.Flags().BoolVar(&renderHTML, "render", false, "print the rendered HTML of a valid document")
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// validateUI prints the validation result as JSON. Invalid documents are
// reported and returned as an error so the exit status is non-zero.
func validateUI(out io.Writer, data []byte, render bool) error {
	validator, err := jsonui.NewValidator()
	if err != nil {
		return err
	}
	result := validator.Validate(json.RawMessage(data))

	if render && result.Valid {
		el := jsonui.NewRenderer(nil, nil, logger.NewNoOpLogger()).Render(result.Schema)
		if err := el.WriteHTML(out); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out)
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	return result.Err()
}
