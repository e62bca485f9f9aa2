package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-job-harvester/internal/ai"
	"go-job-harvester/internal/browser"
	"go-job-harvester/internal/cleaner"
	"go-job-harvester/internal/database"
	"go-job-harvester/internal/extractor"
	"go-job-harvester/internal/logger"

	"github.com/spf13/cobra"
)

// checkCommand groups the smoke tests for each external dependency.
func checkCommand() *cobra.Command {
	check := &cobra.Command{
		Use:   "check",
		Short: "Smoke-test config, LLM, browser, database and extraction",
	}

	check.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Println("🔧 Testing config loading...")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Println("✅ Config loaded successfully!")
			fmt.Printf("   Sites: %s\n", cfg.SitesPath)
			fmt.Printf("   Keywords: %v\n", cfg.Keywords)
			fmt.Printf("   LLM: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
			fmt.Printf("   Database: %s\n", cfg.Database.Driver)
			fmt.Printf("   Seen cache: %s\n", cfg.Seen.Backend)
			fmt.Printf("   Cookies Path: %s\n", cfg.CookiesPath)
			if err := cfg.Validate(); err != nil {
				fmt.Printf("⚠️ %v\n", err)
			}
			return nil
		},
	})

	check.AddCommand(&cobra.Command{
		Use:   "llm",
		Short: "Send a one-line prompt to the configured provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := ai.New(cfg.LLM, 30*time.Second)
			if err != nil {
				return err
			}
			fmt.Println("Sending request to the LLM provider...")
			reply, err := client.Complete(cmd.Context(), ai.Request{
				System: "Reply with a single JSON object.",
				User:   `Return {"status":"ok"}`,
			})
			if err != nil {
				return fmt.Errorf("completion failed: %w", err)
			}
			fmt.Printf("✅ Reply: %s\n", ai.CleanMarkdownJSON(reply))
			return nil
		},
	})

	check.AddCommand(&cobra.Command{
		Use:   "browser <url>",
		Short: "Open a URL with the configured cookies and save a screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Println("🌐 Testing Browser Manager...")
			cookies, err := browser.LoadCookiesDir(cfg.CookiesPath)
			if err != nil {
				return fmt.Errorf("failed to load cookies: %w", err)
			}
			fmt.Printf("✅ Loaded %d cookies\n", len(cookies))

			pm := browser.NewPlaywright(browser.Options{
				Headless:          *cfg.Browser.Headless,
				UserAgent:         cfg.Browser.UserAgent,
				NavigationTimeout: cfg.Browser.NavigationTimeout,
				Cookies:           cookies,
			})
			defer pm.Close()

			page, err := pm.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer page.Close()

			if err := page.Navigate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("✅ Landed on %s\n", page.URL())

			shot := filepath.Join(os.TempDir(), "harvester-check.png")
			if err := page.Screenshot(shot); err != nil {
				fmt.Printf("⚠️ Failed to take screenshot: %v\n", err)
			} else {
				fmt.Printf("📸 Screenshot saved: %s\n", shot)
			}
			return nil
		},
	})

	check.AddCommand(&cobra.Command{
		Use:   "db",
		Short: "Connect to the configured database and ensure the jobs table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			fmt.Printf("Attempting to connect to %s...\n", cfg.Database.Driver)
			switch cfg.Database.Driver {
			case "postgres":
				repo, err := database.ConnectDB(ctx, cfg.Database.URL, cfg.Database.Table, nil)
				if err != nil {
					return err
				}
				defer repo.Close()
				if err := repo.EnsureSchema(ctx); err != nil {
					return err
				}
			case "sqlite":
				store, err := database.OpenSQLite(ctx, cfg.Database.URL, cfg.Database.Table, nil)
				if err != nil {
					return err
				}
				defer store.Close()
				n, err := store.Count(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("   %d jobs stored\n", n)
			default:
				return fmt.Errorf("no database driver configured")
			}
			fmt.Println("✅ Database reachable, jobs table ready")
			return nil
		},
	})

	check.AddCommand(&cobra.Command{
		Use:   "extract <url>",
		Short: "Run detail extraction on one job page and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			client, err := ai.New(cfg.LLM, cfg.Extractor.PageTimeout)
			if err != nil {
				return err
			}
			ext := extractor.New(extractor.Options{
				Client:      client,
				Fetcher:     extractor.NewCollyFetcher(cfg.Browser.UserAgent, 0),
				Cleaner:     cleaner.New(cfg.Extractor.MaxHTMLChars),
				PageTimeout: cfg.Extractor.PageTimeout,
				Logger:      log,
			})
			job, err := ext.ExtractDetail(cmd.Context(), extractor.Target{URL: args[0]})
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(job, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	})
	return check
}
