// Init command for the nutrifit CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nutrifit/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file and the data directory",
		Long: `Init writes a default config.yaml into the config directory if none
exists and prepares the data directory. Running it again is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// prepare has already written config.yaml; attaching creates the
			// data directory and kv.jsonl.
			cfg, err := a.storageConfig()
			if err != nil {
				return userError(err)
			}
			if err := a.withSession(func(*session) error { return nil }); err != nil {
				return err
			}

			out := map[string]string{
				"config":  paths.ConfigFile(a.configDir),
				"backend": cfg.Backend,
				"data":    cfg.DataDir,
			}
			return a.emit(cmd, out, line("nutrifit initialized\n  config: %s\n  data:   %s",
				out["config"], out["data"]))
		},
	}
}
