package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindset-labs/phrasematch"
	"github.com/mindset-labs/phrasematch/phrasefile"
	"github.com/mindset-labs/phrasematch/types"
)

var addCmd = &cobra.Command{
	Use:   "add <key> <phrase>...",
	Short: "Add phrase variations under an intent key",
	Long:  "Embed and store one or more phrase wordings under a canonical intent key.",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAdd,
}

var matchCmd = &cobra.Command{
	Use:   "match <text>",
	Short: "Resolve text to its closest intent key",
	Long:  "Embed the given text and report the nearest stored phrase and its key.",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Resolve text semantically with a full-text fallback",
	Long:  "Match the given text by embedding similarity first; below the threshold, fall back to full-text search over the stored wordings.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List stored intent keys",
	RunE:  runKeys,
}

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Bootstrap phrases from a directory of JSON seed files",
	Long:  "Load every <key>.json file in the directory into the phrase store.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

var (
	matchThreshold float32
	matchKey       string
	matchTop       int

	searchThreshold float32
	searchKey       string
)

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(initCmd)

	matchCmd.Flags().Float32Var(&matchThreshold, "threshold", 0, "Minimum similarity to accept (default from config)")
	matchCmd.Flags().StringVar(&matchKey, "key", "", "Restrict matching to one intent key")
	matchCmd.Flags().IntVar(&matchTop, "top", 0, "Show the N best candidates instead of a yes/no match")

	searchCmd.Flags().Float32Var(&searchThreshold, "threshold", 0, "Minimum similarity for the semantic pass (default from config)")
	searchCmd.Flags().StringVar(&searchKey, "key", "", "Restrict the search to one intent key")
}

func runAdd(cmd *cobra.Command, args []string) error {
	key, variations := args[0], args[1:]

	report, err := globalEngine.AddPhrase(cmd.Context(), key, variations)
	if err != nil {
		return err
	}

	fmt.Printf("Key %q: %d added, %d skipped\n", report.Key, len(report.Added), len(report.Skipped))
	for _, w := range report.Warnings {
		fmt.Printf("  warning: %q also stored under %s\n", w.Text, strings.Join(w.OtherKeys, ", "))
	}
	for _, f := range report.Failed {
		fmt.Printf("  failed: %q: %v\n", f.Text, f.Err)
	}
	if !report.AllStored() {
		return fmt.Errorf("%d variation(s) failed to embed", len(report.Failed))
	}
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	text := args[0]
	ctx := cmd.Context()

	if matchTop > 0 {
		matches, err := globalEngine.TopMatches(ctx, text, matchTop)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Println("No stored phrases.")
			return nil
		}
		for i, m := range matches {
			fmt.Printf("%2d. %-20s %.4f  %q\n", i+1, m.Key, m.Score, m.Text)
		}
		return nil
	}

	threshold := matchThreshold
	if !cmd.Flags().Changed("threshold") {
		threshold = globalConfig.Match.Threshold
	}

	result, err := matchWithOptionalKey(cmd, text, threshold)
	if err != nil {
		return err
	}

	if !result.Matched {
		fmt.Printf("No match (best score %.4f, threshold %.4f)\n", result.Score, threshold)
		return nil
	}
	fmt.Printf("%s  %.4f  %q\n", result.Key, result.Score, result.Text)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	text := args[0]
	ctx := cmd.Context()

	threshold := searchThreshold
	if !cmd.Flags().Changed("threshold") {
		threshold = globalConfig.Match.Threshold
	}

	var result phrasematch.SearchResult
	var err error
	if searchKey != "" {
		result, err = globalEngine.SearchPhraseKey(ctx, text, searchKey, threshold)
	} else {
		result, err = globalEngine.SearchPhrase(ctx, text, threshold)
	}
	if err != nil {
		return err
	}

	if !result.Matched {
		fmt.Printf("No match (best score %.4f, threshold %.4f)\n", result.Score, threshold)
		return nil
	}
	fmt.Printf("%s  %.4f  %q  (%s)\n", result.Key, result.Score, result.Text, result.Method)
	return nil
}

func matchWithOptionalKey(cmd *cobra.Command, text string, threshold float32) (types.MatchResult, error) {
	if matchKey != "" {
		return globalEngine.MatchKey(cmd.Context(), text, matchKey, threshold)
	}
	return globalEngine.Match(cmd.Context(), text, threshold)
}

func runKeys(cmd *cobra.Command, args []string) error {
	keys, err := globalEngine.Keys(cmd.Context())
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Println("No intent keys stored.")
		return nil
	}
	for _, key := range keys {
		texts, err := globalEngine.Variations(cmd.Context(), key)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d)\n", key, len(texts))
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	reports, err := phrasefile.LoadDir(cmd.Context(), globalEngine, args[0])
	if err != nil {
		return err
	}

	failedFiles := 0
	for _, fr := range reports {
		if fr.Err != nil {
			failedFiles++
			fmt.Printf("%s: %v\n", fr.Path, fr.Err)
			continue
		}
		added, skipped := 0, 0
		for _, r := range fr.Reports {
			added += len(r.Added)
			skipped += len(r.Skipped)
		}
		fmt.Printf("%s: %d added, %d skipped\n", fr.Path, added, skipped)
	}
	if failedFiles > 0 {
		return fmt.Errorf("%d file(s) failed to load", failedFiles)
	}
	return nil
}
