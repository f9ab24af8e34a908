// injector.go - Schnittstelle zum LoRA Injektions-Mechanismus
//
// Der Resolver liefert Assignments; dieses Paket reicht sie einzeln und
// in Emissions-Reihenfolge an einen Injector weiter. Wie Duplikate
// behandelt werden entscheidet der Injector, nicht der Resolver.
package injector

import (
	"errors"
	"fmt"

	"github.com/7blacky7/loraplan/config"
	"github.com/7blacky7/loraplan/resolver"
)

// Fehler-Definitionen
var (
	ErrModuleVanished = errors.New("modul-pfad nicht mehr aufloesbar")
	ErrDuplicatePath  = errors.New("modul-pfad bereits belegt")
)

// Injector haengt an ein Modul einen Low-Rank Adapter mit den gegebenen
// Hyperparametern an.
type Injector interface {
	Attach(mod resolver.Module, spec config.Spec) error
}

// Apply fuettert die Assignments eines Results in Emissions-Reihenfolge
// an den Injector. Der erste Fehler bricht ab; ein bereits fatales
// Result wird unveraendert durchgereicht.
func Apply(res *resolver.Result, root resolver.Module, inj Injector) error {
	if res.Err != nil {
		return res.Err
	}

	for _, a := range res.Assignments {
		mod := root
		if a.Path != "" {
			sub, ok := root.Resolve(a.Path)
			if !ok {
				return fmt.Errorf("%w: %s", ErrModuleVanished, a.Path)
			}
			mod = sub
		}
		if err := inj.Attach(mod, a.Spec); err != nil {
			return err
		}
	}
	return nil
}
