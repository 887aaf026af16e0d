package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/hunter-searcher/internal/crawler"
)

type crawlFlags struct {
	url       string
	depth     int
	whitelist string
	blacklist string
	force     bool
}

// newCrawlCmd creates the 'crawl' subcommand, which runs one crawl session
// from a seed URL and indexes every page it reaches.
func newCrawlCmd(opts *options) *cobra.Command {
	flags := &crawlFlags{}
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl from a seed URL and index the pages found",
		Long: `Runs a breadth-first crawl starting at --url. Each page is checked
against robots.txt and the host allow/deny lists, fetched, extracted and
stored in the search index. --depth bounds the number of pages indexed
(-1 for no limit).`,
		// Args runs before the root builds the app, so a blank seed fails fast.
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return err
			}
			_, err := normalizeSeed(flags.url)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd, opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.url, "url", "", "seed URL (http:// is assumed when no scheme is given)")
	cmd.Flags().IntVar(&flags.depth, "depth", 1, "maximum number of pages to index, -1 for unbounded")
	cmd.Flags().StringVar(&flags.whitelist, "whitelist", "", "comma-separated host substrings; only matching hosts are crawled")
	cmd.Flags().StringVar(&flags.blacklist, "blacklist", "", "comma-separated host substrings; matching hosts are skipped")
	cmd.Flags().BoolVar(&flags.force, "force", false, "rewrite stored pages even when unchanged")
	if err := cmd.MarkFlagRequired("url"); err != nil {
		panic(err)
	}
	return cmd
}

func runCrawl(cmd *cobra.Command, opts *options, flags *crawlFlags) error {
	seed, err := normalizeSeed(flags.url)
	if err != nil {
		return err
	}

	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	cfg := &crawler.Config{
		UserAgent:      opts.cfg.Crawler.UserAgent,
		MaxDocuments:   flags.depth,
		AllowList:      crawler.ParseHostList(flags.whitelist),
		DenyList:       crawler.ParseHostList(flags.blacklist),
		Delay:          opts.cfg.Crawler.Delay,
		RequestTimeout: opts.cfg.Crawler.RequestTimeout,
		Force:          flags.force,
	}
	c, err := appInstance.NewCrawler(cfg)
	if err != nil {
		return fmt.Errorf("build crawler: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, err := c.Crawl(ctx, seed)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawler: %w", err)
	}
	logger.Info("crawl command finished",
		zap.String("seed", seed),
		zap.Int("documents", len(docs)),
		zap.Strings("sites", c.Sites()),
	)
	return nil
}

// normalizeSeed rejects a blank seed and prefixes http:// when no scheme is present.
func normalizeSeed(raw string) (string, error) {
	seed := strings.TrimSpace(raw)
	if seed == "" {
		return "", errors.New("a seed --url is required")
	}
	if !strings.Contains(seed, "://") {
		seed = "http://" + seed
	}
	return seed, nil
}
