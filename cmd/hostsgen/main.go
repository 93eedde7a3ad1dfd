// Command hostsgen resolves a list of domains to IPv4 addresses and writes
// the results as a hosts file.
//
// Domains are read one per line from a text file, resolved concurrently
// through a layered pipeline (system resolver, pure-Go resolver, public
// recursive resolvers, similarity and TLD-variant fallbacks), and written
// out in `IP<TAB>domain` format with unresolved domains kept as comments.
//
// Usage:
//
//	hostsgen [flags]              - Generate a hosts file from a domain list
//	hostsgen version              - Show version information
//
// Examples:
//
//	hostsgen -i general.txt -o hosts
//	hostsgen -i blocked.txt -w 50 -t 2s
//	hostsgen -i general.txt --apply --flush-cache
//
// --apply appends the resolved entries to the system hosts file (requires
// administrator rights and asks for confirmation) after saving a backup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/zumuvik/updater-hosts/internal/buildinfo"
	"github.com/zumuvik/updater-hosts/internal/config"
	"github.com/zumuvik/updater-hosts/internal/dnscache"
	"github.com/zumuvik/updater-hosts/internal/dnsresolver"
	"github.com/zumuvik/updater-hosts/internal/domainlist"
	"github.com/zumuvik/updater-hosts/internal/engine"
	"github.com/zumuvik/updater-hosts/internal/filesys"
	"github.com/zumuvik/updater-hosts/internal/hostsfile"
	"github.com/zumuvik/updater-hosts/internal/log"
	"github.com/zumuvik/updater-hosts/internal/progress"
)

type flags struct {
	input      string
	output     string
	timeout    time.Duration
	workers    int
	noFallback bool
	noAltDNS   bool
	apply      bool
	flushCache bool
	yes        bool
}

func main() {
	cfg, err := config.New().Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var f flags

	root := &cobra.Command{
		Use:   "hostsgen",
		Short: "Generate a hosts file from a domain list",
		Long: `Hostsgen resolves a list of domains to IPv4 addresses and writes the
results as a hosts file. Domains that fail direct resolution fall back to
public recursive resolvers, similar already-resolved domains and common
TLD variants, so a blocked or flaky DNS path still produces usable output.`,
		Example:      "hostsgen -i general.txt -o hosts -w 50",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applyFlags(cmd, cfg, &f)
			return runGenerate(cfg, f)
		},
	}

	root.Flags().StringVarP(&f.input, "input", "i", cfg.Output.Input, "domain list file")
	root.Flags().StringVarP(&f.output, "output", "o", cfg.Output.Path, "output hosts file")
	root.Flags().DurationVarP(&f.timeout, "timeout", "t", cfg.Resolve.Timeout, "per-lookup timeout (0 = auto by batch size)")
	root.Flags().IntVarP(&f.workers, "workers", "w", cfg.Resolve.Workers, "worker count, 1-200 (0 = auto by batch size)")
	root.Flags().BoolVar(&f.noFallback, "no-fallback", false, "disable similar-domain and TLD-variant fallbacks")
	root.Flags().BoolVar(&f.noAltDNS, "no-alternate-dns", false, "disable public recursive resolver fallback")
	root.Flags().BoolVar(&f.apply, "apply", false, "append resolved entries to the system hosts file")
	root.Flags().BoolVar(&f.flushCache, "flush-cache", false, "flush the OS DNS cache after applying")
	root.Flags().BoolVarP(&f.yes, "yes", "y", false, "skip confirmation prompts")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("version: %s\n", buildinfo.Version)
			fmt.Printf("commit: %s\n", buildinfo.Commit)
		},
	}

	root.AddCommand(versionCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyFlags folds command-line overrides into the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f *flags) {
	if cmd.Flags().Changed("workers") && f.workers != 0 {
		f.workers = config.ClampWorkers(f.workers)
	}
	if cmd.Flags().Changed("timeout") && f.timeout != 0 {
		f.timeout = config.ClampTimeout(f.timeout)
	}
	if f.noFallback {
		cfg.Resolve.SimilarFallback = false
	}
	if f.noAltDNS {
		cfg.Resolve.AlternateDNS = false
	}
}

func runGenerate(cfg *config.Config, f flags) error {
	fs := filesys.OS()

	domains, err := domainlist.Read(fs, f.input)
	if err != nil {
		return err
	}

	color.New(color.Bold).Printf("Resolving %d domains from %s\n", len(domains), f.input)
	workers := f.workers
	if workers == 0 {
		workers = engine.WorkersFor(len(domains))
	}
	timeout := f.timeout
	if timeout == 0 {
		timeout = engine.TimeoutFor(len(domains))
	}
	fmt.Printf("  workers: %d, timeout: %s\n", workers, timeout)
	if cfg.Resolve.SimilarFallback {
		fmt.Println("  similar-domain fallback enabled")
	}
	if cfg.Resolve.AlternateDNS {
		fmt.Println("  alternate DNS servers enabled")
	}

	var opts []dnsresolver.Opt
	if cfg.Resolve.AlternateDNS {
		opts = append(opts, dnsresolver.WithAlternateDNS())
	}
	resolver := dnsresolver.New(opts...)

	// Interrupt stops handing out new tasks; in-flight lookups finish
	// within their own timeouts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	total := len(domains)
	eng := engine.New(resolver,
		engine.WithWorkers(f.workers),
		engine.WithTimeout(f.timeout),
		engine.WithSimilarFallback(cfg.Resolve.SimilarFallback),
		engine.WithObserver(progressPrinter(total)),
	)

	results := eng.ResolveBatch(ctx, domains)
	fmt.Println()

	snap := eng.Progress()
	printSummary(results, snap)

	content := hostsfile.Render(results)
	if err := hostsfile.WriteLocal(fs, f.output, content); err != nil {
		return err
	}
	color.New(color.FgGreen, color.Bold).Printf("✓ Wrote %s\n", f.output)

	if !f.apply {
		fmt.Printf("To apply manually, append %s to %s\n", f.output, hostsfile.SystemPath())
		return nil
	}

	return applyToSystem(fs, content, f)
}

// progressPrinter returns an observer that redraws a single progress line.
// Large batches only redraw once per percent to keep the terminal sane.
func progressPrinter(total int) engine.Observer {
	interval := int64(total / 100)
	if interval < 1 {
		interval = 1
	}

	return func(snap progress.Snapshot) {
		if snap.Attempted%interval != 0 && snap.Attempted != int64(total) {
			return
		}
		fmt.Printf("\r  %d/%d (%.1f%%) | ✓ %d ✗ %d | %.1f/s | ETA ~%s ",
			snap.Attempted, total,
			float64(snap.Attempted)/float64(total)*100,
			snap.Succeeded, snap.Failed,
			snap.Rate(),
			snap.ETA(total).Round(time.Second))
	}
}

func printSummary(results []engine.Result, snap progress.Snapshot) {
	var direct, similar, variant int
	for _, r := range results {
		switch r.Source {
		case engine.SourceDirect:
			direct++
		case engine.SourceSimilar:
			similar++
		case engine.SourceVariant:
			variant++
		}
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Total", "Resolved", "Direct", "Similar", "Variant", "Failed", "Elapsed"})
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
	)
	table.SetBorder(false)
	table.Append([]string{
		strconv.FormatInt(snap.Attempted, 10),
		strconv.FormatInt(snap.Succeeded, 10),
		strconv.Itoa(direct),
		strconv.Itoa(similar),
		strconv.Itoa(variant),
		strconv.FormatInt(snap.Failed, 10),
		snap.Elapsed.Round(time.Millisecond).String(),
	})
	table.Render()
}

func applyToSystem(fs filesys.OsFS, content string, f flags) error {
	systemPath := hostsfile.SystemPath()

	if !f.yes {
		color.New(color.FgHiRed, color.Bold).Print("WARNING: ")
		color.New(color.FgYellow).Printf("You are about to append resolved entries to ")
		color.New(color.FgHiYellow, color.Bold).Printf("%s\n", systemPath)
		color.New(color.FgHiWhite).Print("Are you sure you want to proceed? (y/yes/n/no): ")

		var response string
		if _, err := fmt.Scanln(&response); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		response = strings.ToLower(response)
		if response != "y" && response != "yes" {
			return fmt.Errorf("operation aborted")
		}
	}

	if err := hostsfile.Backup(fs, systemPath); err != nil {
		log.Warnf("could not back up system hosts: %v", err)
	} else {
		fmt.Printf("Saved backup to %s\n", hostsfile.BackupFile)
	}

	if err := hostsfile.Append(fs, content, systemPath); err != nil {
		return err
	}
	color.New(color.FgGreen, color.Bold).Printf("✓ Applied entries to %s\n", systemPath)

	if !f.flushCache {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := dnscache.New(runtime.GOOS).Flush(ctx); err != nil {
		log.Warnf("DNS cache flush: %v", err)
		return nil
	}
	color.New(color.FgGreen).Println("✓ DNS cache flushed")
	return nil
}
