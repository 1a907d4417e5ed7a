package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/model"
	"github.com/existflow/animeshelf/internal/prefs"
	"github.com/existflow/animeshelf/internal/sched"
	"github.com/existflow/animeshelf/internal/suggest"
	"github.com/existflow/animeshelf/internal/telemetry"
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the best rated anime",
	Long: `List the best rated anime.

The limit is remembered and shared with the TUI's top row.

Examples:
  animeshelf top
  animeshelf top -n 50`,
	Args: cobra.NoArgs,
	RunE: runTop,
}

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List the most popular anime",
	Args:  cobra.NoArgs,
	RunE:  runPopular,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog by title",
	Long: `Search the catalog by title.

The query becomes the TUI's search box content on next launch.

Examples:
  animeshelf search cowboy bebop
  animeshelf search naruto -n 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [prefix]",
	Short: "Show autocomplete suggestions for a prefix",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

var showCmd = &cobra.Command{
	Use:     "show [anime-id]",
	Aliases: []string{"info"},
	Short:   "Show details of one anime",
	Args:    cobra.ExactArgs(1),
	RunE:    runShow,
}

var limitCmd = &cobra.Command{
	Use:   "limit [top|genre|search] [n]",
	Short: "Show or set list limits",
	Long: `Show or set how many entries the limited lists fetch.

Limits are clamped to [1, 1000].

Examples:
  animeshelf limit
  animeshelf limit top 50`,
	Args: cobra.RangeArgs(0, 2),
	RunE: runLimit,
}

var (
	topLimit    int
	searchLimit int
)

func init() {
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 0, "Number of entries (saved)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Number of results (saved)")
}

// resolveLimit returns the saved limit for l, first saving the flag value
// when the user passed one
func resolveLimit(cmd *cobra.Command, a *app, l prefs.List, flagValue int) (int, error) {
	ctx := cmd.Context()
	if cmd.Flags().Changed("limit") {
		if _, err := a.prefs.SetLimit(ctx, l, flagValue); err != nil {
			return 0, fmt.Errorf("failed to save limit: %w", err)
		}
	}
	return a.prefs.Limit(ctx, l), nil
}

func runTop(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	limit, err := resolveLimit(cmd, a, prefs.Top, topLimit)
	if err != nil {
		return err
	}
	items, err := a.api.Top(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to load top anime: %w", err)
	}
	printAnimes(cmd.OutOrStdout(), "⭐ Best ratings", items)
	return nil
}

func runPopular(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	items, err := a.api.Popular(cmd.Context(), 0)
	if err != nil {
		return fmt.Errorf("failed to load popular anime: %w", err)
	}
	printAnimes(cmd.OutOrStdout(), "🔥 Most popular", items)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("search query is empty")
	}
	limit, err := resolveLimit(cmd, a, prefs.Search, searchLimit)
	if err != nil {
		return err
	}
	if err := a.prefs.SetLastSearch(cmd.Context(), query); err != nil {
		logger.Warn("Failed to save search", logger.F("error", err))
	}

	items, err := a.api.Search(cmd.Context(), query, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(items) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No results for %q\n", query)
		return nil
	}
	printAnimes(cmd.OutOrStdout(), fmt.Sprintf("🔍 Results for %q", query), items)
	return nil
}

// runSuggest types the prefix into a suggestion fetcher one rune at a time,
// the way the search box receives keystrokes, and prints what it settles on.
// The fetcher runs on its own loop goroutine.
func runSuggest(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	query := strings.Join(args, " ")
	if len([]rune(strings.TrimSpace(query))) < suggest.DefaultMinLength {
		return fmt.Errorf("type at least %d characters", suggest.DefaultMinLength)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout+suggest.DefaultDelay)
	defer cancel()

	loop := sched.NewLoop()
	go func() { _ = loop.Run(ctx) }()

	result := make(chan suggest.Snapshot, 1)
	loop.Post(func() {
		var (
			f       *suggest.Fetcher
			fetched bool
		)
		f = suggest.New(suggest.Options{
			Source:    a.api,
			Scheduler: loop,
			Logger:    logger.Default(),
			Tracer:    telemetry.Tracer(),
			OnChange: func(s suggest.Snapshot) {
				if s.Phase == suggest.Fetching {
					fetched = true
				}
				if fetched && s.Phase == suggest.Idle {
					f.Close()
					result <- s
				}
			},
		})
		runes := []rune(query)
		for i := range runes {
			f.Input(string(runes[:i+1]))
		}
	})

	select {
	case s := <-result:
		out := cmd.OutOrStdout()
		if len(s.Suggestions) == 0 {
			fmt.Fprintf(out, "No suggestions for %q\n", query)
			return nil
		}
		for _, sg := range s.Suggestions {
			fmt.Fprintf(out, "  %-8d  %s\n", sg.ID, sg.Title)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("autocomplete timed out: %w", ctx.Err())
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseAnimeID(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.api.Anime(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load anime %d: %w", id, err)
	}
	printDetails(cmd.OutOrStdout(), d)
	return nil
}

func runLimit(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	lists := []prefs.List{prefs.Top, prefs.Genre, prefs.Search}

	if len(args) == 0 {
		for _, l := range lists {
			fmt.Fprintf(out, "  %-8s %d\n", l, a.prefs.Limit(ctx, l))
		}
		return nil
	}

	l, err := parseList(args[0])
	if err != nil {
		return err
	}
	current := a.prefs.Limit(ctx, l)
	if len(args) == 1 {
		fmt.Fprintf(out, "  %-8s %d\n", l, current)
		return nil
	}

	n, ok := prefs.ParseLimit(args[1], current)
	if !ok {
		return fmt.Errorf("limit must be a positive number, got %q", args[1])
	}
	saved, err := a.prefs.SetLimit(ctx, l, n)
	if err != nil {
		return fmt.Errorf("failed to save limit: %w", err)
	}
	fmt.Fprintf(out, "✅ %s limit set to %d\n", l, saved)
	return nil
}

func parseList(name string) (prefs.List, error) {
	for _, l := range []prefs.List{prefs.Top, prefs.Genre, prefs.Search} {
		if strings.EqualFold(name, l.String()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown list %q (want top, genre or search)", name)
}

func parseAnimeID(raw string) (int, error) {
	return parseID("anime", raw)
}

func parseID(kind, raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %s", kind, raw)
	}
	return id, nil
}

func printAnimes(w io.Writer, title string, items []model.Anime) {
	fmt.Fprintf(w, "\n%s (%d)\n", title, len(items))
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for i, a := range items {
		fmt.Fprintf(w, "  %3d.  %-8d  %s\n", i+1, a.ID, truncate(a.Title, 44))
	}
	fmt.Fprintln(w)
}

func printDetails(w io.Writer, d *model.AnimeDetails) {
	fmt.Fprintf(w, "\n%s\n", d.Title)
	if d.TitleJapanese != "" {
		fmt.Fprintf(w, "%s\n", d.TitleJapanese)
	}
	fmt.Fprintln(w, strings.Repeat("─", 60))

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %-11s %s\n", name, value)
		}
	}
	if d.Score > 0 {
		field("Score", strconv.FormatFloat(d.Score, 'f', 2, 64))
	}
	if d.Rank > 0 {
		field("Rank", "#"+strconv.Itoa(d.Rank))
	}
	if d.Episodes > 0 {
		field("Episodes", strconv.Itoa(d.Episodes))
	}
	field("Status", d.Status)
	field("Aired", d.Aired())
	field("Genres", strings.Join(d.Genres, ", "))
	field("Studios", strings.Join(d.Studios, ", "))

	if len(d.Streaming) > 0 {
		names := make([]string, 0, len(d.Streaming))
		for _, s := range d.Streaming {
			names = append(names, s.Name)
		}
		field("Streaming", strings.Join(names, ", "))
	}
	if d.Synopsis != "" {
		fmt.Fprintf(w, "\n%s\n", d.Synopsis)
	}
	if len(d.Characters) > 0 {
		fmt.Fprintln(w, "\nCharacters")
		for _, c := range d.Characters {
			line := fmt.Sprintf("  %s [%d]", c.Name, c.ID)
			if len(c.VoiceActors) > 0 {
				va := c.VoiceActors[0]
				line += fmt.Sprintf(" (%s [%d])", va.Name, va.ID)
			}
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
