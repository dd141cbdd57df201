package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/webscore/tally/internal/calibrate"
	"github.com/webscore/tally/internal/config"
	"github.com/webscore/tally/internal/metrics"
	"github.com/webscore/tally/internal/observability"
	"github.com/webscore/tally/internal/report"
	"github.com/webscore/tally/internal/score"
)

func main() {
	var (
		reportPath string
		outputPath string
		procID     string
		configPath string
		jsonOut    bool
	)

	rootCmd := &cobra.Command{
		Use:   "tally",
		Short: "Accessibility deficit scoring for test-runner reports",
	}

	scoreCmd := &cobra.Command{
		Use:   "score",
		Short: "Score one report and attach the score record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(configPath, reportPath, outputPath, procID, jsonOut)
		},
	}
	scoreCmd.Flags().StringVar(&reportPath, "report", "", "Report file to score")
	scoreCmd.Flags().StringVar(&outputPath, "output", "", "Scored report destination (default: stdout)")
	scoreCmd.Flags().StringVar(&procID, "proc", "", "Scoring procedure ID")
	scoreCmd.Flags().StringVar(&configPath, "config", "", "Config file path")
	scoreCmd.Flags().BoolVar(&jsonOut, "json", false, "Output run metrics as JSON")
	_ = scoreCmd.MarkFlagRequired("report")

	procsCmd := &cobra.Command{
		Use:   "procs",
		Short: "List registered scoring procedures",
		Run: func(cmd *cobra.Command, args []string) {
			for _, id := range score.ProcIDs() {
				proc, err := score.Lookup(id)
				if err != nil {
					continue
				}
				marker := " "
				if id == score.DefaultProcID {
					marker = "*"
				}
				fmt.Printf("%s %-8s groups(abs=%g largest=%g smaller=%g) solo=%g preventions(inHouse=%g external=%g) normalLatency=%gs\n",
					marker, id,
					proc.GroupWeights.Absolute, proc.GroupWeights.Largest, proc.GroupWeights.Smaller,
					proc.SoloWeight,
					proc.PreventionWeights.InHouse, proc.PreventionWeights.External,
					proc.NormalLatency)
			}
		},
	}

	calibrateCmd := &cobra.Command{
		Use:   "calibrate [report files]",
		Short: "Derive a visit-latency baseline from historical reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalibrate(args)
		},
	}

	rootCmd.AddCommand(scoreCmd, procsCmd, calibrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runScore(configPath, reportPath, outputPath, procID string, jsonOut bool) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.Log)

	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    "tally",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Observability.Environment,
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		SampleRate:     cfg.Observability.SampleRate,
	})
	if err != nil {
		return err
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	if procID == "" {
		procID = cfg.Score.Proc
	}
	if procID == "" {
		procID = score.DefaultProcID
	}
	proc, err := score.Lookup(procID)
	if err != nil {
		return err
	}

	rep, err := report.Load(reportPath)
	if err != nil {
		return err
	}

	run := metrics.New(rep.ID, proc.ID)
	run.CollectActs(len(rep.Acts), len(rep.TestActs()))

	rec, err := proc.Score(ctx, rep)
	if err != nil {
		return err
	}
	run.Finish(rec, nil)

	if err := rep.AttachScore(rec); err != nil {
		return err
	}
	scored, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding scored report: %w", err)
	}
	scored = append(scored, '\n')

	if outputPath == "" {
		if _, err := os.Stdout.Write(scored); err != nil {
			return err
		}
	} else if err := os.WriteFile(outputPath, scored, 0o644); err != nil {
		return fmt.Errorf("writing scored report: %w", err)
	}

	if jsonOut {
		data, err := run.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		run.PrintSummary(os.Stderr)
	}
	return nil
}

func runCalibrate(paths []string) error {
	var reports []*report.Report
	for _, path := range paths {
		rep, err := report.Load(path)
		if err != nil {
			slog.Warn("skipping unreadable report", "path", path, "error", err)
			continue
		}
		reports = append(reports, rep)
	}

	_, span := observability.StartCalibrateSpan(context.Background(), len(reports))
	defer span.End()

	baseline, err := calibrate.FromReports(reports)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}

	fmt.Printf("samples:   %d\n", baseline.Samples)
	fmt.Printf("median:    %.1fs\n", baseline.Median)
	fmt.Printf("p75:       %.1fs\n", baseline.P75)
	fmt.Printf("p90:       %.1fs\n", baseline.P90)
	fmt.Printf("suggested: %.1fs\n", baseline.Suggested)
	return nil
}

func setupLogging(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
