// cmd_validate.go - Selector-Konfiguration pruefen ohne Modell
// Hauptfunktionen: newValidateCmd, ValidateHandler
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/7blacky7/loraplan/config"
)

// newValidateCmd - Erstellt den validate Command
func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate CONFIG",
		Short: "Parse and validate a LoRA selector config",
		Args:  cobra.ExactArgs(1),
		RunE:  ValidateHandler,
	}
	return cmd
}

// ValidateHandler - Laedt die Konfiguration und meldet die Struktur
func ValidateHandler(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(args[0])
	if err != nil {
		return err
	}

	for _, name := range cfg.Targets() {
		target, _ := cfg.Target(name)
		terminals, selectors := countNodes(&target.Node)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d selectors, %d terminal nodes", name, selectors, terminals)
		if target.Parameterization != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " (parameterization %s)", target.Parameterization)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	fmt.Fprintln(cmd.OutOrStdout(), "OK")
	return nil
}

// countNodes - Zaehlt Terminal- und Gesamt-Knoten eines Teilbaums
func countNodes(n *config.Node) (terminals, total int) {
	total = 1
	if n.Terminal() {
		terminals = 1
		return
	}
	for i := range n.Targets {
		t, c := countNodes(&n.Targets[i])
		terminals += t
		total += c
	}
	return
}
