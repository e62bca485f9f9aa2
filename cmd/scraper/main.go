package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-job-harvester/internal/app"
	"go-job-harvester/internal/config"
	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/models"
	"go-job-harvester/internal/navigator"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	sitesPath string
	keywords  []string
	outputDir string
	headful   bool
	debug     bool
)

func main() {
	root := &cobra.Command{
		Use:           "scraper",
		Short:         "Harvest job postings from configured career sites",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCommand,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file")
	root.PersistentFlags().StringVar(&sitesPath, "sites", "", "site list CSV (overrides sites_path)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	run := &cobra.Command{
		Use:   "run",
		Short: "Run one harvesting pass over every site",
		RunE:  runCommand,
	}
	run.Flags().StringSliceVarP(&keywords, "keywords", "k", nil, "search keywords (overrides config)")
	run.Flags().StringVarP(&outputDir, "output", "o", "", "directory for JSON/XLSX results")
	run.Flags().BoolVar(&headful, "headful", false, "show the browser window")
	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(run, &cobra.Command{
		Use:   "sites",
		Short: "List configured sites and the navigation strategy chosen for each",
		RunE:  sitesCommand,
	}, checkCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if sitesPath != "" {
		cfg.SitesPath = sitesPath
	}
	if len(keywords) > 0 {
		cfg.Keywords = keywords
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if headful {
		headless := false
		cfg.Browser.Headless = &headless
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func runCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Info("🔧 Config loaded", logger.Strings("keywords", cfg.Keywords), logger.String("sites", cfg.SitesPath))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, prometheus.NewRegistry(), log)
	if err != nil {
		return fmt.Errorf("build harvester: %w", err)
	}
	defer a.Close()

	res, err := a.Run(ctx)
	if err != nil && !errors.Is(err, models.ErrPersistenceFailure) {
		return err
	}
	for _, f := range res.Files {
		log.Info("📁 Results saved", logger.String("path", f))
	}
	if res.Summary.Cancelled {
		log.Warn("⏹️ Run cancelled before completion")
	}
	return err
}

func sitesCommand(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()
	sites, err := config.LoadSites(cfg.SitesPath, log)
	if err != nil {
		return err
	}
	if len(sites) == 0 {
		fmt.Println("ℹ️ No sites configured")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Company", "URL", "Strategy", "Harvest", "Max Pages"})
	for _, site := range sites {
		s := navigator.Select(site)
		t.AppendRow(table.Row{site.CompanyName, site.URL, s.Kind, s.Harvest, site.PageCeiling()})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(sites)})
	t.Render()
	return nil
}
