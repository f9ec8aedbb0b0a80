// Package integrators provides higher-order steppers for dynamo models.
// The solver itself relaxes with the explicit Euler step built into dynamo;
// these are selected by name for benchmarks and accuracy comparisons.
package integrators

import (
	"fmt"
	"sort"

	"github.com/merement/Dice/internal/dynamo"
)

// Factory builds an integrator with fresh scratch space.
type Factory func() dynamo.Integrator

var registry = map[string]Factory{
	"euler": func() dynamo.Integrator { return dynamo.NewEuler() },
	"heun":  func() dynamo.Integrator { return NewHeun() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("integrators: unknown integrator %q (have %v)", name, Names())
	}
	return f, nil
}

// Option wires the named integrator into a model.
func Option(name string) (dynamo.Option, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return dynamo.WithIntegrator(name, f), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
