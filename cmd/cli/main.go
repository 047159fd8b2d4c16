package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"neuropipe/adapters/excel"
	"neuropipe/adapters/plot"
	"neuropipe/adapters/postgres"
	"neuropipe/app"
	"neuropipe/internal/config"
	"neuropipe/internal/extract"
	"neuropipe/internal/normalize"
	"neuropipe/internal/testkit"
	"neuropipe/ports"
	"neuropipe/ui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "neuropipe",
		Short: "Batch pipeline from tracking and MUA recordings to normalized features and reports",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newNormalizeCmd(),
		newReportCmd(),
		newStatesCmd(),
		newGenerateCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var allFigures bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: normalize, analyze, plot, save",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireDataFile(); err != nil {
				return err
			}

			pipeline := buildPipeline(cfg, true)
			pipeline.RenderAllSessions = allFigures
			_, err = pipeline.Run(context.Background())
			return err
		},
	}

	cmd.Flags().BoolVar(&allFigures, "all-figures", false, "render a time-course pair for every session")
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Normalize and save the dataset without figures or run storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireDataFile(); err != nil {
				return err
			}

			store := excel.NewTableStore(cfg.Data.File)
			ctx := context.Background()

			ds, err := store.Load(ctx)
			if err != nil {
				return err
			}

			res := normalize.GroupedZScores(ds.Records, normalize.LogSink{})
			scored := normalize.Apply(ds, res)
			log.Printf("Normalized %d groups, %d rows scored, %d warnings", len(res.Groups), scored, res.Warnings)

			return store.Save(ctx, ds)
		},
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Compute and print the validation report without saving anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireDataFile(); err != nil {
				return err
			}

			pipeline := buildPipeline(cfg, false)
			_, err = pipeline.Analyze(context.Background())
			return err
		},
	}
}

func newStatesCmd() *cobra.Command {
	var trackingFile string

	cmd := &cobra.Command{
		Use:   "states",
		Short: "Classify behavioural states from a tracking trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			samples, err := excel.LoadTracking(trackingFile)
			if err != nil {
				return err
			}

			tc := cfg.Tracking
			speeds := extract.Speeds(samples)
			cleaned := extract.RemoveArtifacts(speeds, tc.SpeedCeiling, tc.MaxGapFrames)
			smoothed := extract.Smooth(cleaned, tc.SmoothWindow)
			states := extract.ClassifyStates(smoothed, tc.ImmobileBelow, tc.LocomotionAbove, tc.MinBoutFrames)

			bouts := extract.Bouts(states)
			fractions := extract.StateFractions(states)

			log.Printf("Tracking: %d frames, %d bouts", len(samples), len(bouts))
			for state, fraction := range fractions {
				log.Printf("  %-13s %5.1f%%", state, fraction*100)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&trackingFile, "tracking", "", "tracking file with t, x, y columns (csv or xlsx)")
	cmd.MarkFlagRequired("tracking")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var out string
	var sessions, rows int
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic dataset for pipeline trials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.DefaultConfig()
			cfg.Sessions = sessions
			cfg.RowsPerGroup = rows
			cfg.Seed = seed

			ds := testkit.NewGenerator(cfg).Dataset(out)
			store := excel.NewTableStore(out)
			if err := store.Save(context.Background(), ds); err != nil {
				return err
			}
			log.Printf("Wrote %d synthetic rows to %s", ds.RowCount(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "synthetic.csv", "output file (csv or xlsx)")
	cmd.Flags().IntVar(&sessions, "sessions", 4, "number of sessions")
	cmd.Flags().IntVar(&rows, "rows", 120, "rows per (session, arena) group")
	cmd.Flags().Int64Var(&seed, "seed", 42, "generator seed")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest run report and figures over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return ui.NewServer(cfg.Plots.Dir).Start(cfg.Server.Port)
		},
	}
}

// buildPipeline assembles the adapters; withSideEffects controls figure
// rendering and the optional run store.
func buildPipeline(cfg *config.Config, withSideEffects bool) *app.Pipeline {
	tables := excel.NewTableStore(cfg.Data.File)

	var renderer *plot.Renderer
	var runs ports.RunStore
	if withSideEffects {
		renderer = plot.NewRenderer(cfg.Plots.Dir, cfg.Plots.Workers)
		runs = connectRunStore(cfg)
	}

	return app.NewPipeline(cfg, tables, runs, renderer, normalize.LogSink{})
}

func connectRunStore(cfg *config.Config) ports.RunStore {
	if cfg.Database.URL == "" {
		return nil
	}

	db, err := postgres.Connect(cfg.Database.URL)
	if err != nil {
		log.Printf("WARNING: run store disabled: %v", err)
		return nil
	}

	runs := postgres.NewRunRepository(db)
	if err := runs.EnsureSchema(context.Background()); err != nil {
		log.Printf("WARNING: run store disabled: %v", err)
		return nil
	}
	return runs
}
