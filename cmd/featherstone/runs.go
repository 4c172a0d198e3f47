package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/featherstone/internal/storage"
	"github.com/san-kum/featherstone/internal/viz"
	"github.com/spf13/cobra"
)

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMECHANISM\tUNITS\tTIME\tDURATION\tDT\tINTEG\tCTRL\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4gs\t%s\t%s\t%s\n",
			run.ID,
			run.Mechanism,
			run.Units,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Controller,
			status,
		)
	}

	return w.Flush()
}

// caption names column i of the recorded state: coordinates first, then
// rates.
func caption(joints []string, i int) string {
	n := len(joints)
	switch {
	case i < n:
		return fmt.Sprintf("q %s", joints[i])
	case i < 2*n:
		return fmt.Sprintf("qp %s", joints[i-n])
	default:
		return fmt.Sprintf("x%d", i)
	}
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	p := viz.Styles()
	fmt.Println(p.Header.Render(meta.ID))
	fmt.Print(viz.KeyValue([][2]string{
		{"mechanism", meta.Mechanism},
		{"samples", fmt.Sprint(len(states))},
		{"span", fmt.Sprintf("%.4g .. %.4g", times[0], times[len(times)-1])},
	}))
	fmt.Println()

	numVars := min(len(states[0]), maxPlots)
	for varIdx := 0; varIdx < numVars; varIdx++ {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][varIdx]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption(meta.Joints, varIdx)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if _, err := st.Load(args[0]); err != nil {
		return err
	}

	f, err := os.Open(st.StatesPath(args[0]))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(os.Stdout, f)
	return err
}
