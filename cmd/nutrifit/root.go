// Root command for the nutrifit CLI.
package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/nutrifit/internal/log"
	"github.com/mesh-intelligence/nutrifit/internal/paths"
)

// app holds global flag values and state prepared before a subcommand runs.
type app struct {
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagEphemeral bool

	configDir string
	cfg       *viper.Viper
	env       envSettings
	log       *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: log.Discard()}

	root := &cobra.Command{
		Use:     "nutrifit",
		Short:   "Track meals, workouts and your net calories",
		Version: version,
		Long: `nutrifit keeps a local log of meals and workouts and reports calories
in, calories out, and the net balance.

Records are stored in the data directory (default $(CWD)/.nutrifit-db).
Use --ephemeral to work against an in-memory store that is discarded on exit.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.prepare,
	}

	root.PersistentFlags().StringVar(&a.flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.nutrifit-db)")
	root.PersistentFlags().BoolVar(&a.flagJSON, "json", false, "output as JSON")
	root.PersistentFlags().BoolVar(&a.flagEphemeral, "ephemeral", false, "use an in-memory store")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newMealCmd(a))
	root.AddCommand(newWorkoutCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newTotalsCmd(a))
	root.AddCommand(newResetCmd(a))
	root.AddCommand(newShellCmd(a))

	return root
}

// prepare loads .env, reads config.yaml and the NUTRIFIT_* settings, and
// builds the logger.
func (a *app) prepare(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	configDir, err := paths.ResolveConfigDir(a.flagConfigDir)
	if err != nil {
		return sysError(err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}

	settings, err := parseEnv()
	if err != nil {
		return userError(err)
	}
	levelName := cfg.GetString(cfgKeyLogLevel)
	if settings.LogLevel != "" {
		levelName = settings.LogLevel
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return userError(err)
	}

	a.configDir = configDir
	a.cfg = cfg
	a.env = settings
	logCfg := log.DefaultConfig()
	logCfg.Level = level
	logCfg.Output = cmd.ErrOrStderr()
	a.log = log.New(logCfg)
	a.log.Debug("config loaded", "config_dir", configDir, "file", cfg.ConfigFileUsed())
	return nil
}
