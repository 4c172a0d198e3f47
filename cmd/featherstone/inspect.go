package main

import (
	"fmt"
	"strings"

	"github.com/san-kum/featherstone/internal/config"
	"github.com/san-kum/featherstone/internal/mechanism"
	"github.com/san-kum/featherstone/internal/units"
	"github.com/san-kum/featherstone/internal/viz"
	"github.com/spf13/cobra"
)

func listPresets(cmd *cobra.Command, args []string) error {
	families := config.Families()
	if len(args) > 0 {
		families = args
	}

	p := viz.Styles()
	for _, family := range families {
		presets := config.ListPresets(family)
		if len(presets) == 0 {
			fmt.Printf("no presets for family: %s\n", family)
			continue
		}
		fmt.Println(p.Header.Render(family))
		for _, name := range presets {
			cfg := config.GetPreset(family, name)
			fmt.Printf("  %s  %s\n",
				p.Value.Render(name),
				p.Muted.Render(fmt.Sprintf("%d joints, %s, %s", len(cfg.Joints), cfg.Units, cfg.Run.Integrator)))
		}
	}
	return nil
}

func inspectMechanism(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	w, err := cfg.Build()
	if err != nil {
		return err
	}
	m, err := mechanism.New(w)
	if err != nil {
		return err
	}

	x0 := m.InitialState()
	dx := m.Derivative(x0, nil, 0)
	if err := m.Err(); err != nil {
		return err
	}
	_, qpp := dx.Split()

	names := cfg.JointNames()
	p := viz.Styles()
	fmt.Println(viz.Tree(w, names))
	fmt.Println()
	fmt.Println(viz.ArticulatedTable(m.Simulation(), m.Kinematics(), m.Articulated(), names))
	fmt.Println()

	accs := make([]string, len(qpp))
	for i, a := range qpp {
		accs[i] = fmt.Sprintf("%.6g", a)
	}
	fmt.Print(viz.KeyValue([][2]string{
		{"dof", fmt.Sprint(m.Dof())},
		{"total mass", fmt.Sprintf("%.6g", w.TotalMass())},
		{"gravity", fmt.Sprintf("%.6g", w.Gravity)},
		{"energy", fmt.Sprintf("%.6g", m.Energy(x0))},
		{"qpp(0)", strings.Join(accs, " ")},
	}))
	fmt.Println()
	fmt.Println(p.Panel.Render(strings.TrimSuffix(
		viz.Sketch(m.Simulation(), m.Kinematics(), viz.Camera{Yaw: yaw, Pitch: pitch}, 40, 12), "\n")))
	return nil
}

func convertMechanism(cmd *cobra.Command, args []string) error {
	to, err := units.Parse(target)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	w, err := cfg.Build()
	if err != nil {
		return err
	}

	from := w.Units
	w.Convert(to)

	p := viz.Styles()
	fmt.Println(p.Muted.Render(fmt.Sprintf("%s: %s -> %s", cfg.Name, from, to)))
	fmt.Println(viz.Tree(w, cfg.JointNames()))
	fmt.Println()
	fmt.Print(w.String())
	return nil
}
