// cmd_modules.go - Modul-Pfade eines Modells auflisten
// Hauptfunktionen: newModulesCmd, ModulesHandler
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/7blacky7/loraplan/modeltree"
)

// newModulesCmd - Erstellt den modules Command
func newModulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules MODEL",
		Short: "List the module paths of a model",
		Args:  cobra.ExactArgs(1),
		RunE:  ModulesHandler,
	}

	cmd.Flags().StringP("prefix", "p", "", "Only list modules under this dotted prefix")
	cmd.Flags().Bool("count", false, "Only print the number of modules")

	return cmd
}

// component - Ein benannter Modul-Baum fuer die Ausgabe
type component struct {
	name string
	tree *modeltree.Tree
}

// ModulesHandler - Laedt das Modell und listet seine Modul-Pfade
func ModulesHandler(cmd *cobra.Command, args []string) error {
	prefix, _ := cmd.Flags().GetString("prefix")
	countOnly, _ := cmd.Flags().GetBool("count")

	modelPath := args[0]

	var components []component
	if modeltree.IsDiffusersDir(modelPath) {
		trees, err := modeltree.LoadDiffusers(modelPath)
		if err != nil {
			return err
		}
		for _, name := range []string{"unet", "text_encoder"} {
			if tree, ok := trees[name]; ok {
				components = append(components, component{name, tree})
			}
		}
	} else {
		tree, err := loadSingleTree(modelPath)
		if err != nil {
			return err
		}
		components = append(components, component{"model", tree})
	}

	out := cmd.OutOrStdout()
	for _, comp := range components {
		paths := comp.tree.Paths()
		if prefix != "" {
			var filtered []string
			for _, p := range paths {
				if p == prefix || strings.HasPrefix(p, prefix+".") {
					filtered = append(filtered, p)
				}
			}
			paths = filtered
		}

		if countOnly {
			fmt.Fprintf(out, "%s\t%d\n", comp.name, len(paths))
			continue
		}
		for _, p := range paths {
			fmt.Fprintf(out, "%s\t%s\n", comp.name, displayPath(p))
		}
	}
	return nil
}
