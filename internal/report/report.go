package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/gravsim/internal/storage"
)

// Summary renders one stored run for the terminal.
func Summary(meta *storage.RunMetadata) string {
	var sb strings.Builder

	sb.WriteString(Title.Render(fmt.Sprintf("run %s", meta.ID)))
	sb.WriteString("\n")

	rows := [][2]string{
		{"scenario", meta.Scenario},
		{"bodies", fmt.Sprintf("%d", len(meta.Bodies))},
		{"G", fmt.Sprintf("%g", meta.G)},
		{"dt", fmt.Sprintf("%g s", meta.Dt)},
		{"steps", fmt.Sprintf("%d/%d", meta.StepsTaken, meta.Steps)},
		{"momentum drift", fmt.Sprintf("%.3e", meta.MomentumDrift)},
		{"energy drift", fmt.Sprintf("%.3e", meta.EnergyDrift)},
	}
	for _, row := range rows {
		sb.WriteString(line(row[0], row[1]))
	}

	if len(meta.Metrics) > 0 {
		sb.WriteString(Separator(40))
		sb.WriteString("\n")
		names := make([]string, 0, len(meta.Metrics))
		for name := range meta.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sb.WriteString(line(name, fmt.Sprintf("%.6g", meta.Metrics[name])))
		}
	}

	if meta.Error != "" {
		sb.WriteString(ErrorText.Render("error: " + meta.Error))
		sb.WriteString("\n")
	}

	return Panel.Render(strings.TrimRight(sb.String(), "\n"))
}

func line(label, value string) string {
	return fmt.Sprintf("%s %s\n", MetricLabel.Render(fmt.Sprintf("%-16s", label)), MetricValue.Render(value))
}

// RunTable renders the run list, one row per run.
func RunTable(runs []storage.RunMetadata) string {
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render(fmt.Sprintf("%-32s  %-10s  %-19s  %6s  %10s  %s",
		"ID", "SCENARIO", "TIME", "BODIES", "DT", "STEPS")))
	sb.WriteString("\n")

	for _, run := range runs {
		status := fmt.Sprintf("%d", run.StepsTaken)
		if run.Error != "" {
			status = ErrorText.Render(status + " (failed)")
		}
		sb.WriteString(fmt.Sprintf("%-32s  %-10s  %-19s  %6d  %10g  %s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Bodies),
			run.Dt,
			status,
		))
	}

	return sb.String()
}

type SweepRow struct {
	Dt            float64
	Steps         int
	EnergyDrift   float64
	MomentumDrift float64
	Millis        float64
	Err           error
}

func SweepTable(rows []SweepRow) string {
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render(fmt.Sprintf("%-12s  %8s  %12s  %14s  %10s",
		"DT", "STEPS", "ENERGY_DRIFT", "MOMENTUM_DRIFT", "TIME_MS")))
	sb.WriteString("\n")

	for _, r := range rows {
		if r.Err != nil {
			sb.WriteString(fmt.Sprintf("%-12g  %s\n", r.Dt, ErrorText.Render("error: "+r.Err.Error())))
			continue
		}
		sb.WriteString(fmt.Sprintf("%-12g  %8d  %12.3e  %14.3e  %10.2f\n",
			r.Dt, r.Steps, r.EnergyDrift, r.MomentumDrift, r.Millis))
	}

	return sb.String()
}
