// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/7blacky7/loraplan/envconfig"
	"github.com/7blacky7/loraplan/logutil"
)

// Version der loraplan CLI
const Version = "0.3.0"

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// envVars - Gibt alle Environment-Variablen sortiert zurueck
func envVars() []envconfig.EnvVar {
	m := envconfig.AsMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	envs := make([]envconfig.EnvVar, 0, len(keys))
	for _, k := range keys {
		envs = append(envs, m[k])
	}
	return envs
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "loraplan",
		Short:         "Resolve LoRA selector configs against diffusion model module trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
			slog.Debug("environment", "config", envconfig.Values())
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				fmt.Fprintf(cmd.OutOrStdout(), "loraplan version %s\n", Version)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	planCmd := newPlanCmd()
	validateCmd := newValidateCmd()
	modulesCmd := newModulesCmd()

	for _, cmd := range []*cobra.Command{planCmd, validateCmd, modulesCmd} {
		appendEnvDocs(cmd, envVars())
	}

	rootCmd.AddCommand(planCmd, validateCmd, modulesCmd)

	return rootCmd
}
