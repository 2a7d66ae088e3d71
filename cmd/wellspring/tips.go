package main

import (
	"context"
	"fmt"

	"github.com/hyperengineering/wellspring"
	"github.com/spf13/cobra"
)

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Suggest small next steps for your latest check-in",
	Long: `Rank coaching tips against your latest check-in and recent tags.

Each tip gets a reference (T1, T2, ...) for the complete and favorite
subcommands. References follow the current ranking, so run them before
checking in again.

Example:
  wellspring tips
  wellspring tips --max 5
  wellspring tips complete T1
  wellspring tips favorite T2 box-breathing`,
	RunE: runTips,
}

var tipsCompleteCmd = &cobra.Command{
	Use:   "complete <ref-or-id>...",
	Short: "Mark tips as done so they rank lower",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTipsComplete,
}

var tipsFavoriteCmd = &cobra.Command{
	Use:   "favorite <ref-or-id>...",
	Short: "Toggle favorite tips so they rank higher",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTipsFavorite,
}

var tipsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset completed tips",
	Args:  cobra.NoArgs,
	RunE:  runTipsClear,
}

var tipsMax int

func init() {
	tipsCmd.Flags().IntVarP(&tipsMax, "max", "n", wellspring.DefaultMaxTips, "Maximum number of tips")

	tipsCmd.AddCommand(tipsCompleteCmd)
	tipsCmd.AddCommand(tipsFavoriteCmd)
	tipsCmd.AddCommand(tipsClearCmd)
}

func runTips(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	tips, err := client.Tips(cmd.Context(), tipsMax)
	if err != nil {
		return fmt.Errorf("rank tips: %w", err)
	}
	return outputTips(cmd, tips)
}

// trackAllTips replays the ranking so T-refs shown by a previous
// "wellspring tips" resolve in this process.
func trackAllTips(ctx context.Context, client *wellspring.Client) error {
	_, err := client.Tips(ctx, len(client.Recommender().Catalog()))
	return err
}

type tipFeedbackOutput struct {
	Applied     []string               `json:"applied"`
	Failed      map[string]string      `json:"failed,omitempty"`
	Preferences wellspring.Preferences `json:"preferences"`
}

type tipAction func(*wellspring.Client) func(context.Context, string) (wellspring.Preferences, error)

func applyTipFeedback(cmd *cobra.Command, refs []string, verb string, action tipAction) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx := cmd.Context()
	if err := trackAllTips(ctx, client); err != nil {
		return fmt.Errorf("rank tips: %w", err)
	}

	apply := action(client)
	result := tipFeedbackOutput{Failed: map[string]string{}}
	out := cmd.OutOrStdout()
	for _, ref := range refs {
		prefs, err := apply(ctx, ref)
		result.Preferences = prefs
		if err != nil {
			result.Failed[ref] = err.Error()
			if !outputJSON {
				printError(out, "%s: %v", ref, err)
			}
			continue
		}
		result.Applied = append(result.Applied, ref)
		if outputJSON {
			continue
		}
		id, _ := client.ResolveTip(ref)
		state := verb
		if verb == "favorite" {
			state = "favorited"
			if !prefs.IsFavorited(id) {
				state = "removed from favorites"
			}
		}
		printSuccess(out, "%s (%s) %s", ref, id, state)
	}

	if outputJSON {
		if len(result.Failed) == 0 {
			result.Failed = nil
		}
		if err := outputAsJSON(cmd, result); err != nil {
			return err
		}
	}
	if len(result.Applied) == 0 {
		return fmt.Errorf("no tips updated")
	}
	return nil
}

func runTipsComplete(cmd *cobra.Command, args []string) error {
	return applyTipFeedback(cmd, args, "completed", func(c *wellspring.Client) func(context.Context, string) (wellspring.Preferences, error) {
		return c.CompleteTip
	})
}

func runTipsFavorite(cmd *cobra.Command, args []string) error {
	return applyTipFeedback(cmd, args, "favorite", func(c *wellspring.Client) func(context.Context, string) (wellspring.Preferences, error) {
		return c.ToggleFavorite
	})
}

func runTipsClear(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	before := len(client.Recommender().Preferences().Completed)
	prefs, err := client.ClearCompletedTips(cmd.Context())
	if err != nil {
		return fmt.Errorf("clear completed tips: %w", err)
	}
	if outputJSON {
		return outputAsJSON(cmd, prefs)
	}
	printSuccess(cmd.OutOrStdout(), "Cleared %d completed tips", before)
	return nil
}
