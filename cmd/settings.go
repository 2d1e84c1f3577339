package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sort"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/interview-copilot/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change provider settings",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		s, err := app.Store.Settings(ctx)
		if err != nil {
			return err
		}
		kv, err := settings.ToKV(s)
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(kv))
		for k := range kv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s = %s\n", k, kv[k])
		}
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		key := args[0]
		if !slices.Contains(settings.Keys(), key) {
			return eris.Errorf("settings: unknown key %q", key)
		}

		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		s, err := app.Store.Settings(ctx)
		if err != nil {
			return err
		}
		kv, err := settings.ToKV(s)
		if err != nil {
			return err
		}

		fmt.Println(string(kv[key]))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one setting",
	Long: `Set one setting.

Values are stored as JSON. A value that parses as JSON is stored as given,
anything else is stored as a JSON string, so both "0.7" and "bearer" work.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		key, value := args[0], args[1]
		if !slices.Contains(settings.Keys(), key) {
			return eris.Errorf("settings: unknown key %q", key)
		}

		raw := json.RawMessage(value)
		if !json.Valid(raw) {
			quoted, err := json.Marshal(value)
			if err != nil {
				return eris.Wrap(err, "settings: encode value")
			}
			raw = quoted
		}

		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Store.Put(ctx, key, raw); err != nil {
			return err
		}

		// Round-trip through the merge so bad values surface now, not on
		// the next ask.
		if _, err := app.Store.Settings(ctx); err != nil {
			return eris.Wrapf(err, "settings: value rejected for %q", key)
		}
		return nil
	},
}

var settingsExportFile string

var settingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the effective settings as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		s, err := app.Store.Settings(ctx)
		if err != nil {
			return err
		}

		buf, err := yaml.Marshal(s)
		if err != nil {
			return eris.Wrap(err, "settings: encode yaml")
		}

		if settingsExportFile == "" {
			fmt.Print(string(buf))
			return nil
		}
		if err := os.WriteFile(settingsExportFile, buf, 0o644); err != nil {
			return eris.Wrap(err, "settings: write export")
		}
		return nil
	},
}

var settingsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import settings from a YAML export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		buf, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "settings: read import")
		}

		s := settings.Defaults()
		if err := yaml.Unmarshal(buf, &s); err != nil {
			return eris.Wrap(err, "settings: decode yaml")
		}
		kv, err := settings.ToKV(s.Normalize())
		if err != nil {
			return err
		}

		app, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		return app.Store.PutAll(ctx, kv)
	},
}

func init() {
	settingsExportCmd.Flags().StringVarP(&settingsExportFile, "output", "o", "", "write to file instead of stdout")

	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsExportCmd)
	settingsCmd.AddCommand(settingsImportCmd)
	rootCmd.AddCommand(settingsCmd)
}
