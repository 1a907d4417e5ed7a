package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/animeshelf/internal/model"
)

var characterCmd = &cobra.Command{
	Use:     "character [character-id]",
	Aliases: []string{"char"},
	Short:   "Show a character and their voice actors",
	Long: `Show a character profile. Character ids are listed in brackets
by 'animeshelf show'.

Examples:
  animeshelf character 11`,
	Args: cobra.ExactArgs(1),
	RunE: runCharacter,
}

var voiceActorCmd = &cobra.Command{
	Use:     "voice-actor [person-id]",
	Aliases: []string{"va"},
	Short:   "Show a voice actor and the characters they voice",
	Args:    cobra.ExactArgs(1),
	RunE:    runVoiceActor,
}

func runCharacter(cmd *cobra.Command, args []string) error {
	id, err := parseID("character", args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := a.api.Character(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load character %d: %w", id, err)
	}
	printCharacter(cmd.OutOrStdout(), c)
	return nil
}

func runVoiceActor(cmd *cobra.Command, args []string) error {
	id, err := parseID("voice actor", args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	v, err := a.api.VoiceActor(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to load voice actor %d: %w", id, err)
	}
	printVoiceActor(cmd.OutOrStdout(), v)
	return nil
}

func printCharacter(w io.Writer, c *model.CharacterDetails) {
	fmt.Fprintf(w, "\n%s\n", c.Name)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	if c.Favorites > 0 {
		fmt.Fprintf(w, "  %-11s %s\n", "Favorites", strconv.Itoa(c.Favorites))
	}
	if len(c.Pictures) > 0 {
		fmt.Fprintf(w, "  %-11s %d\n", "Pictures", len(c.Pictures))
	}
	if c.About != "" {
		fmt.Fprintf(w, "\n%s\n", c.About)
	}
	if len(c.VoiceActors) > 0 {
		fmt.Fprintln(w, "\nVoice actors")
		for _, v := range c.VoiceActors {
			fmt.Fprintf(w, "  %s [%d]\n", v.Name, v.ID)
		}
	}
	fmt.Fprintln(w)
}

func printVoiceActor(w io.Writer, v *model.VoiceActorDetails) {
	fmt.Fprintf(w, "\n%s\n", v.Name)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	if v.Birthday != "" {
		fmt.Fprintf(w, "  %-11s %s\n", "Birthday", v.Birthday)
	}
	if v.About != "" {
		fmt.Fprintf(w, "\n%s\n", v.About)
	}
	if len(v.Characters) > 0 {
		fmt.Fprintln(w, "\nCharacters")
		for _, c := range v.Characters {
			fmt.Fprintf(w, "  %s [%d]\n", c.Name, c.ID)
		}
	}
	fmt.Fprintln(w)
}
