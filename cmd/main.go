package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/richard-senior/matchcast/internal/config"
	"github.com/richard-senior/matchcast/internal/logger"
	"github.com/richard-senior/matchcast/pkg/ensemble"
	"github.com/richard-senior/matchcast/pkg/history"
	"github.com/richard-senior/matchcast/pkg/model"
	"github.com/richard-senior/matchcast/pkg/report"
	"github.com/richard-senior/matchcast/pkg/store"
	"github.com/richard-senior/matchcast/pkg/transport"
	"github.com/richard-senior/matchcast/pkg/web"
)

const usage = `usage: matchcast [-config file] <command> [arguments]

commands:
  import [-url url -team name]  download a team CSV and copy the data directory into the store
  train                         train a model bundle from the match history
  teams                         list the known teams
  predict [-markdown file] <home> <away>
                                print the prediction report
  serve                         run the web server
  interactive                   choose two teams and print the report
`

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}
	setupLogging(cfg)
	defer logger.Close()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	logger.Debug("Running command", cmd, len(args))

	switch cmd {
	case "import":
		err = runImport(cfg, args)
	case "train":
		err = runTrain(cfg)
	case "teams":
		err = runTeams(cfg)
	case "predict":
		err = runPredict(cfg, args)
	case "serve":
		err = runServe(cfg)
	case "interactive":
		err = runInteractive(cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed:", cmd, err)
		logger.Close()
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	logger.SetLevel(cfg.Log.Level)
	logger.SetShowDateTime(cfg.Log.DateTime)
	logger.SetLogFile(cfg.Log.File)
	if err := logger.SetLogOutput(rune(cfg.Log.Output[0])); err != nil {
		fmt.Fprintln(os.Stderr, "Falling back to console logging:", err)
	}
}

// openSource returns the store when one is configured, otherwise the CSV directory.
// The returned store is nil for the directory source.
func openSource(cfg *config.Config) (history.Source, *store.Store, error) {
	if cfg.Store.Driver == "" {
		return history.NewDirSource(cfg.DataDir), nil, nil
	}
	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, nil, err
	}
	return st, st, nil
}

func trainOptions(cfg *config.Config) model.TrainOptions {
	return model.TrainOptions{
		Iterations:      cfg.Training.Iterations,
		LearningRate:    cfg.Training.LearningRate,
		L2:              cfg.Training.L2,
		RidgeL2:         cfg.Training.RidgeL2,
		SelectorMax:     cfg.Training.SelectorMax,
		HoldoutFraction: cfg.Training.HoldoutFraction,
	}
}

// loadBundle reads the saved bundle, training and saving one first when none exists
func loadBundle(cfg *config.Config, src history.Source) (*model.Bundle, error) {
	b, err := model.Load(cfg.ModelsPath)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, model.ErrNoBundle) {
		return nil, err
	}
	logger.Warn("No trained models found, training now", cfg.ModelsPath)
	b, _, err = model.TrainFromSource(src, trainOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("train models: %w", err)
	}
	if err := model.Save(cfg.ModelsPath, b); err != nil {
		return nil, err
	}
	return b, nil
}

func newBlender(cfg *config.Config, src history.Source) (*ensemble.Blender, error) {
	b, err := loadBundle(cfg, src)
	if err != nil {
		return nil, err
	}
	return ensemble.New(b, src, ensemble.WithWindow(cfg.RecentWindow)), nil
}

func reportOptions(cfg *config.Config) report.Options {
	return report.Options{Window: cfg.RecentWindow, HeadToHead: cfg.HeadToHeadWindow}
}

func runImport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	url := fs.String("url", "", "remote CSV to download into the data directory")
	team := fs.String("team", "", "team name the downloaded CSV belongs to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *url != "" {
		if *team == "" {
			return fmt.Errorf("-team is required with -url")
		}
		dest := filepath.Join(cfg.DataDir, *team+".csv")
		if err := transport.Download(*url, dest); err != nil {
			return fmt.Errorf("download %s: %w", *url, err)
		}
	}

	if cfg.Store.Driver == "" {
		logger.Info("No store configured, data stays in", cfg.DataDir)
		return nil
	}
	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.Import(history.NewDirSource(cfg.DataDir))
	if err != nil {
		return err
	}
	logger.Info("Import complete, rows saved:", n)
	return nil
}

func runTrain(cfg *config.Config) error {
	src, st, err := openSource(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	b, rep, err := model.TrainFromSource(src, trainOptions(cfg))
	if err != nil {
		return err
	}
	if err := model.Save(cfg.ModelsPath, b); err != nil {
		return err
	}
	fmt.Printf("Trained on %d rows (%d held out), result accuracy %v\n", rep.Rows, rep.Holdout, rep.Result)
	return nil
}

func runTeams(cfg *config.Config) error {
	src, st, err := openSource(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	teams, err := src.Teams()
	if err != nil {
		return err
	}
	for _, t := range teams {
		fmt.Println(t)
	}
	return nil
}

func runPredict(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	markdown := fs.String("markdown", "", "also write the report as markdown to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("predict needs a home and an away team")
	}

	src, st, err := openSource(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}
	blender, err := newBlender(cfg, src)
	if err != nil {
		return err
	}
	return printReport(cfg, blender, src, fs.Arg(0), fs.Arg(1), *markdown)
}

// printReport writes the text report to stdout and to the result file
func printReport(cfg *config.Config, blender *ensemble.Blender, src history.Source, home, away, markdown string) error {
	rep, err := report.Build(blender, src, home, away, reportOptions(cfg))
	if err != nil {
		return err
	}
	text, err := report.Text(rep)
	if err != nil {
		return err
	}
	fmt.Print(text)

	if cfg.ResultFile != "" {
		if err := os.WriteFile(cfg.ResultFile, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", cfg.ResultFile, err)
		}
		logger.Info("Report saved to", cfg.ResultFile)
	}

	if markdown != "" {
		md, err := report.Markdown(rep)
		if err != nil {
			return err
		}
		if err := os.WriteFile(markdown, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", markdown, err)
		}
		logger.Info("Markdown report saved to", markdown)
	}
	return nil
}

func runServe(cfg *config.Config) error {
	src, st, err := openSource(cfg)
	if err != nil {
		return err
	}
	var journal web.Journal
	if st != nil {
		defer st.Close()
		journal = st
	}
	blender, err := newBlender(cfg, src)
	if err != nil {
		return err
	}

	srv := web.New(blender, src, journal, web.Options{
		Report:        reportOptions(cfg),
		RatePerSecond: cfg.Server.RatePerSecond,
		Burst:         cfg.Server.Burst,
		ReadTimeout:   time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:  time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func runInteractive(cfg *config.Config) error {
	src, st, err := openSource(cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}
	teams, err := src.Teams()
	if err != nil {
		return err
	}
	blender, err := newBlender(cfg, src)
	if err != nil {
		return err
	}

	picker, err := report.NewPicker(teams)
	if err != nil {
		return err
	}
	defer picker.Close()

	home, away, err := picker.Choose()
	if errors.Is(err, report.ErrAborted) {
		logger.Info("Selection cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	return printReport(cfg, blender, src, home, away, "")
}
