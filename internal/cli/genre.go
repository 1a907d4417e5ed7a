package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/animeshelf/internal/prefs"
)

var genreCmd = &cobra.Command{
	Use:   "genre",
	Short: "Manage the selected genre",
	Long: `Set or view the selected genre.

The selected genre fills the genre row of the TUI.

Examples:
  animeshelf genre              # Show current genre
  animeshelf genre ls           # List all genres
  animeshelf genre set romance  # Select 'Romance'
  animeshelf genre show -n 5    # Top 5 of the selected genre
  animeshelf genre clear        # Clear selection`,
	Args: cobra.NoArgs,
	RunE: runGenreCurrent,
}

var genreLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List all genres",
	RunE:    runGenreList,
}

var genreSetCmd = &cobra.Command{
	Use:   "set [genre]",
	Short: "Select a genre",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenreSet,
}

var genreShowCmd = &cobra.Command{
	Use:   "show [genre]",
	Short: "List the best anime of a genre (the selected one by default)",
	RunE:  runGenreShow,
}

var genreClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the selected genre",
	RunE:  runGenreClear,
}

var genreLimit int

func init() {
	genreCmd.AddCommand(genreLsCmd)
	genreCmd.AddCommand(genreSetCmd)
	genreCmd.AddCommand(genreShowCmd)
	genreCmd.AddCommand(genreClearCmd)

	genreShowCmd.Flags().IntVarP(&genreLimit, "limit", "n", 0, "Number of entries (saved)")
}

// matchGenre resolves user input against the catalog's genre names
func matchGenre(ctx context.Context, a *app, input string) (string, error) {
	genres, err := a.api.Genres(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list genres: %w", err)
	}
	input = strings.TrimSpace(input)
	for _, g := range genres {
		if strings.EqualFold(g.Name, input) {
			return g.Name, nil
		}
	}
	return "", fmt.Errorf("genre not found: %s", input)
}

func runGenreCurrent(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	genre := a.prefs.SelectedGenre(cmd.Context())
	if genre == "" {
		fmt.Fprintln(out, "🏷️  No genre selected")
		fmt.Fprintln(out, "Use 'animeshelf genre set <genre>' to pick one")
		return nil
	}
	fmt.Fprintf(out, "🏷️  Current genre: %s\n", genre)
	return nil
}

func runGenreList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	genres, err := a.api.Genres(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list genres: %w", err)
	}

	current := a.prefs.SelectedGenre(cmd.Context())
	out := cmd.OutOrStdout()

	fmt.Fprintln(out)
	for _, g := range genres {
		marker := "  "
		if g.Name == current {
			marker = "❯ "
		}
		fmt.Fprintf(out, "%s%-4d  %s\n", marker, g.ID, g.Name)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use 'animeshelf genre set <genre>' to switch genre")
	return nil
}

func runGenreSet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	name, err := matchGenre(cmd.Context(), a, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := a.prefs.SetSelectedGenre(cmd.Context(), name); err != nil {
		return fmt.Errorf("failed to set genre: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "🏷️  Switched to: %s\n", name)
	return nil
}

func runGenreShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	var name string
	if len(args) > 0 {
		name, err = matchGenre(ctx, a, strings.Join(args, " "))
		if err != nil {
			return err
		}
	} else {
		name = a.prefs.SelectedGenre(ctx)
		if name == "" {
			return fmt.Errorf("no genre selected, run 'animeshelf genre set <genre>' or pass one")
		}
	}

	limit, err := resolveLimit(cmd, a, prefs.Genre, genreLimit)
	if err != nil {
		return err
	}
	items, err := a.api.ByGenre(ctx, name, limit)
	if err != nil {
		return fmt.Errorf("failed to load %s anime: %w", name, err)
	}
	printAnimes(cmd.OutOrStdout(), "🏷️  "+name, items)
	return nil
}

func runGenreClear(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.prefs.SetSelectedGenre(cmd.Context(), ""); err != nil {
		return fmt.Errorf("failed to clear genre: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "🏷️  Genre cleared")
	return nil
}
