// cmd_plan.go - Injektions-Plan aufloesen und ausgeben
// Hauptfunktionen: newPlanCmd, PlanHandler
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/7blacky7/loraplan/api"
	"github.com/7blacky7/loraplan/config"
	"github.com/7blacky7/loraplan/envconfig"
	"github.com/7blacky7/loraplan/resolver"
)

// ErrStrictWarnings - Warnungen brechen den Lauf im Strict-Modus ab
var ErrStrictWarnings = errors.New("unresolved index entries (strict mode)")

// newPlanCmd - Erstellt den plan Command
func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve a LoRA selector config against a model and print the injection plan",
		Args:  cobra.ExactArgs(0),
		RunE:  PlanHandler,
	}

	cmd.Flags().StringP("config", "c", "", "Path to the LoRA selector YAML (required)")
	cmd.Flags().StringP("model", "m", "", "Model path: diffusers dir, safetensors file/dir or torch checkpoint (required)")
	cmd.Flags().Bool("json", false, "Emit the plan as JSON instead of a table")
	cmd.Flags().Bool("strict", envconfig.Strict(), "Fail when any index entry did not match")
	cmd.Flags().StringP("output", "o", "", "Write the plan to a file instead of stdout")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

// PlanHandler - Loest die Konfiguration auf und gibt den Plan aus
func PlanHandler(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	modelPath, _ := cmd.Flags().GetString("model")
	asJSON, _ := cmd.Flags().GetBool("json")
	strict, _ := cmd.Flags().GetBool("strict")
	output, _ := cmd.Flags().GetString("output")

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	trees, err := loadTrees(modelPath, cfg.Targets())
	if err != nil {
		return err
	}

	results := resolver.ResolveAll(cfg, trees)

	out := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if asJSON {
		resp := api.NewPlanResponse(modelPath, configPath, results)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	} else {
		renderPlanTable(out, results)
	}

	return planStatus(results, strict)
}

// renderPlanTable - Gibt die Assignments als Tabelle aus
func renderPlanTable(w io.Writer, results []*resolver.Result) {
	var data [][]string
	for _, res := range results {
		for _, a := range res.Assignments {
			data = append(data, []string{
				res.Target,
				displayPath(a.Path),
				strconv.Itoa(a.Spec.Rank),
				strconv.FormatFloat(a.Spec.Alpha, 'g', -1, 64),
				strconv.FormatFloat(a.Spec.Dropout, 'g', -1, 64),
			})
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"TARGET", "MODULE", "RANK", "ALPHA", "DROPOUT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(w, "\n%s: FAILED: %v\n", res.Target, res.Err)
		}
	}
}

// planStatus - Bestimmt den Exit-Status aus den Ergebnissen
func planStatus(results []*resolver.Result, strict bool) error {
	var warnings int
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
		warnings += len(res.Diagnostics)
	}

	if warnings > 0 {
		slog.Warn("plan resolved with warnings", "count", warnings)
		if strict {
			return fmt.Errorf("%w: %d", ErrStrictWarnings, warnings)
		}
	}
	return nil
}
