package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/naka-gawa/portfolio-feed/internal/config"
	"github.com/naka-gawa/portfolio-feed/internal/gateway"
	"github.com/naka-gawa/portfolio-feed/internal/usecase"
	"github.com/naka-gawa/portfolio-feed/internal/view"
	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Fetches the repository feed once and prints it",
	Long: `Fetches the most recently updated repositories of the configured user and
prints them as text, JSON or the HTML fragment served under /repos.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if user, _ := cmd.Flags().GetString("user"); user != "" {
			cfg.Username = user
		}
		format, _ := cmd.Flags().GetString("format")
		withStats, _ := cmd.Flags().GetBool("stats")

		loader, err := newFeedLoader(cfg, logger)
		if err != nil {
			return err
		}
		return runFeed(cmd, loader, format, withStats, cmd.OutOrStdout())
	},
}

func newFeedLoader(cfg *config.Config, logger *log.Logger) (*usecase.FeedLoader, error) {
	githubGateway, err := gateway.NewGitHubGateway(cfg.APIBaseURL, cfg.Timeout(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	renderer := usecase.Renderer{DateLayout: cfg.DateLayout, Location: cfg.Location()}
	return usecase.NewFeedLoader(githubGateway, cfg.Username, renderer, logger), nil
}

func runFeed(cmd *cobra.Command, loader *usecase.FeedLoader, format string, withStats bool, out io.Writer) error {
	result := loader.Fetch(cmd.Context())
	if result.Err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", result.Err)
	}
	content := loader.Render(result)

	switch format {
	case "html":
		return view.RenderFeed(out, content)
	case "json":
		payload := struct {
			Cards    []view.Card          `json:"cards"`
			Fallback string               `json:"fallback,omitempty"`
			Summary  *usecase.FeedSummary `json:"summary,omitempty"`
		}{Cards: content.Cards, Fallback: content.Fallback}
		if withStats {
			summary := usecase.SummarizeFeed(result.Repos)
			payload.Summary = &summary
		}
		jsonData, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal feed to JSON: %w", err)
		}
		fmt.Fprintln(out, string(jsonData))
		return nil
	case "text", "":
		printText(out, content)
		if withStats {
			printSummary(out, usecase.SummarizeFeed(result.Repos))
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q: must be one of text, json, html", format)
	}
}

func printText(out io.Writer, content view.Content) {
	if content.IsFallback() {
		fmt.Fprintln(out, content.Fallback)
		return
	}
	for _, card := range content.Cards {
		fmt.Fprintf(out, "%s  [%s] ★%d  %s\n", card.Name, card.Language, card.Stars, card.Updated)
		fmt.Fprintf(out, "  %s\n", card.Description)
		fmt.Fprintf(out, "  %s\n", card.URL)
		if len(card.Topics) > 0 {
			fmt.Fprintf(out, "  #%s\n", strings.Join(card.Topics, " #"))
		}
	}
}

func printSummary(out io.Writer, s usecase.FeedSummary) {
	fmt.Fprintf(out, "\n%d repositories, %d stars (mean %.1f, median %.1f)\n", s.Repositories, s.TotalStars, s.MeanStars, s.MedianStars)
	for _, l := range s.Languages {
		fmt.Fprintf(out, "  %-12s %d\n", l.Language, l.Count)
	}
}

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.Flags().StringP("format", "f", "text", "Output format: text, json or html")
	feedCmd.Flags().Bool("stats", false, "Append star and language statistics")
	feedCmd.Flags().StringP("user", "u", "", "Override the configured GitHub user name")
}
