package main

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cloudcollector/internal/awscli"
	"cloudcollector/internal/catalog"
	"cloudcollector/internal/collect"
	"cloudcollector/internal/enrich"
	"cloudcollector/internal/errors"
	"cloudcollector/internal/logging"
	"cloudcollector/internal/partition"
	"cloudcollector/internal/progress"
	"cloudcollector/models"
	"cloudcollector/pkg/graceful"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

var awsCmd = &cobra.Command{
	Use:   "aws",
	Short: "Collect AWS resources",
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect resources from the profile's region and any extra regions",
	Args:  cobra.NoArgs,
	RunE:  runCollect,
}

var listServicesCmd = &cobra.Command{
	Use:     "list-services",
	Aliases: []string{"ls"},
	Short:   "List the services that can be collected",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cfg.Catalog.Paths)
		if err != nil {
			return err
		}
		renderServices(cmd.OutOrStdout(), cat)
		return nil
	},
}

func init() {
	f := collectCmd.Flags()
	f.StringP("profile", "p", "default", "AWS CLI profile")
	f.StringSlice("regions", nil, "extra regions, comma-separated, collected after the profile's region")
	f.StringSlice("region-services", nil, "services collected in the extra regions (default all)")
	f.StringSlice("services", nil, "services to collect (default all)")
	f.IntP("concurrency", "c", collect.DefaultConcurrency, "collectors running at once (1-10)")
	f.Bool("create-new-file", false, "add a timestamp to output file names instead of overwriting")
	f.StringP("output-dir", "o", "./output", "output directory")
	f.Duration("timeout", awscli.DefaultTimeout, "timeout of a single AWS CLI call")
	f.Float64("rate", 0, "AWS CLI calls per second, 0 for unlimited")

	for _, c := range []*cobra.Command{collectCmd, listServicesCmd} {
		c.Flags().StringSlice("catalog", nil, "extra catalog files or directories (.hcl, .yaml)")
	}

	awsCmd.AddCommand(collectCmd)
	awsCmd.AddCommand(listServicesCmd)
}

// loadCatalog merges catalog files over the built-in AWS catalog.
func loadCatalog(paths []string) (*catalog.Catalog, error) {
	cat := catalog.AWS()
	if len(paths) == 0 {
		return cat, nil
	}
	extra, err := catalog.LoadFiles(paths...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load catalog files")
	}
	return cat.Merge(extra...)
}

// renderServices prints services grouped by category.
func renderServices(w io.Writer, cat *catalog.Catalog) {
	pterm.Fprintln(w, "📋 Available AWS Services:")
	pterm.Fprintln(w, rule)
	for _, g := range cat.ByCategory() {
		pterm.Fprintln(w, "\n"+g.Category.DisplayName()+":")
		for _, name := range g.Services {
			pterm.Fprintln(w, "  • "+name)
		}
	}
	pterm.Fprintln(w, pterm.Sprintf("\n💡 Total: %d services available", len(cat.Names())))
	pterm.Fprintln(w, "\nUsage examples:")
	pterm.Fprintln(w, "  # Collect specific services from additional regions")
	pterm.Fprintln(w, "  cloudcollector aws collect --regions us-east-1 --region-services acm,cloudfront")
}

// serviceColumns lays names out six to a row.
func serviceColumns(names []string) string {
	var b strings.Builder
	for i, name := range names {
		if i%6 == 0 {
			b.WriteString("\n    ")
		}
		b.WriteString(pterm.Sprintf("%-16s", name))
	}
	return b.String()
}

func runCollect(cmd *cobra.Command, _ []string) error {
	ctx, cancel := graceful.Context(cmd.Context(), logging.Logger)
	defer cancel()
	out := cmd.OutOrStdout()
	log := logging.Logger.Named("collect")

	pterm.Fprintln(out, "🚀 AWS Resource Collector")
	pterm.Fprintln(out, rule)

	cli := awscli.New(cfg.Profile,
		awscli.WithTimeout(cfg.AWS.Timeout),
		awscli.WithRate(cfg.AWS.Rate, cfg.AWS.Burst),
		awscli.WithLogger(log),
	)

	pterm.Fprintln(out, "🔍 Checking AWS CLI...")
	if err := cli.CheckAvailable(ctx); err != nil {
		return errors.Wrap(err, "AWS CLI check failed")
	}
	pterm.Fprintln(out, "✓ AWS CLI is available")
	pterm.Fprintln(out)

	pterm.Fprintln(out, "🔐 Validating AWS credentials...")
	if err := cli.ValidateCredentials(ctx); err != nil {
		return errors.Wrap(err, "credential validation failed")
	}
	pterm.Fprintln(out, "✓ AWS credentials are valid")
	pterm.Fprintln(out)

	pterm.Fprintln(out, "🌍 Determining regions...")
	resolver := &partition.Resolver{Source: cli}
	plan, err := resolver.Plan(ctx, cfg.Regions)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg.Catalog.Paths)
	if err != nil {
		return err
	}
	services, err := cat.Select(cfg.Services)
	if err != nil {
		return err
	}
	names := make([]string, len(services))
	for i, s := range services {
		names[i] = s.Name
	}

	writers, closeWriters, err := buildWriters(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeWriters()

	pterm.Fprintln(out, "✓ Configuration loaded")
	pterm.Fprintln(out, "  Profile: "+cfg.Profile)
	pterm.Fprintln(out, "  Regions: "+strings.Join(plan.Partitions, ", "))
	pterm.Fprintln(out, pterm.Sprintf("  Concurrency: %d collectors", cfg.Concurrency))
	pterm.Fprintln(out, pterm.Sprintf("  Services (%d): %s\n", len(names), serviceColumns(names)))
	if len(cfg.RegionServices) > 0 && len(plan.Extra()) > 0 {
		pterm.Fprintln(out, "ℹ️  Additional regions will only collect: "+strings.Join(cfg.RegionServices, ", "))
	}

	tasks := collect.Plan(services, plan.Partitions, collect.PlanOptions{RegionServices: cfg.RegionServices})
	pterm.Fprintln(out, pterm.Sprintf("📦 Collecting resources (max %d concurrent)...\n", cfg.Concurrency))

	bar := progress.NewCLIObserver(out, len(collect.Expand(tasks)))
	runner := &collect.Runner{
		Client:      cli,
		Augmenter:   enrich.New(cli, log),
		Concurrency: cfg.Concurrency,
		Observer:    progress.Multi{bar, progress.LogObserver{Logger: log}},
		Logger:      log,
	}
	result := runner.Run(ctx, tasks)
	bar.Complete(result.Stats)

	meta := models.Metadata{
		RunID:       uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Profile:     cfg.Profile,
		Regions:     plan.Partitions,
		Services:    names,
	}

	pterm.Fprintln(out, "\n💾 Writing output...")
	// Records gathered before an interrupt are still written.
	if err := writers.Write(context.WithoutCancel(ctx), result.Records, meta); err != nil {
		return err
	}
	pterm.Fprintln(out, "\n✅ Done!")
	return nil
}
