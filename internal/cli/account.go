package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/animeshelf/internal/model"
)

var rateCmd = &cobra.Command{
	Use:   "rate [anime-id] [rating]",
	Short: "Rate an anime from 1 to 10",
	Long: `Rate an anime from 1 to 10. Rating again replaces the old score.

Examples:
  animeshelf rate 5114 10`,
	Args: cobra.ExactArgs(2),
	RunE: runRate,
}

var myAnimesCmd = &cobra.Command{
	Use:     "my-animes",
	Aliases: []string{"mine"},
	Short:   "List the anime you rated",
	Args:    cobra.NoArgs,
	RunE:    runMyAnimes,
}

var recommendCmd = &cobra.Command{
	Use:     "recommend",
	Aliases: []string{"recs"},
	Short:   "List personal recommendations",
	Args:    cobra.NoArgs,
	RunE:    runRecommend,
}

func runRate(cmd *cobra.Command, args []string) error {
	id, err := parseAnimeID(args[0])
	if err != nil {
		return err
	}
	score, err := strconv.Atoi(strings.TrimSpace(args[1]))
	if err != nil || !model.ValidRating(score) {
		return fmt.Errorf("rating must be between %d and %d", model.MinRating, model.MaxRating)
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	userID, err := a.requireLogin()
	if err != nil {
		return err
	}

	msg, err := a.api.RateAnime(cmd.Context(), model.Rating{
		UserID:  model.UserID(userID),
		AnimeID: id,
		Rating:  score,
	})
	if err != nil {
		return fmt.Errorf("failed to rate anime %d: %w", id, err)
	}
	if msg == "" {
		msg = "Rating saved"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s\n", msg)
	return nil
}

func runMyAnimes(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	items, err := a.api.MyAnimes(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to load your anime: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "You have not rated anything yet. Rate one with: animeshelf rate <id> <1-10>")
		return nil
	}
	fmt.Fprintf(out, "\n⭐ Your ratings (%d)\n", len(items))
	fmt.Fprintln(out, strings.Repeat("─", 60))
	for _, r := range items {
		fmt.Fprintf(out, "  %2d/10  %-8d  %s\n", r.Rating, r.ID, truncate(r.Title, 44))
	}
	fmt.Fprintln(out)
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	userID, err := a.requireLogin()
	if err != nil {
		return err
	}
	items, err := a.api.Recommendations(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to load recommendations: %w", err)
	}
	printAnimes(cmd.OutOrStdout(), "✨ Recommended for you", items)
	return nil
}
