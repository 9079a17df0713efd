// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quality-engine/pkg/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <translation-id>",
	Short: "Score a single translation",
	Long: `Evaluate runs the tier ladder for one translation: cached score if the
content is unchanged, heuristic and terminology checks otherwise, and AI
evaluation when those checks escalate. The resulting score is persisted
and printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid translation id %q", args[0])
	}
	forceAI, _ := cmd.Flags().GetBool("force-ai")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := newOrchestrator(s).EvaluateTranslation(context.Background(), id, forceAI, os.Stderr)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	printRecord(rec)
	return nil
}

func printRecord(rec *types.QualityScoreRecord) {
	status := "failed"
	if rec.Passed() {
		status = "passed"
	}
	fmt.Printf("translation %d: %d/100 (%s, %s)\n", rec.TranslationID, rec.Score, status, rec.Type)
	if d := rec.Dimensions; d != nil {
		fmt.Printf("  accuracy %d  fluency %d  terminology %d  format %d\n",
			d.Accuracy, d.Fluency, d.Terminology, d.Format)
	}
	for _, iss := range rec.Issues {
		fmt.Printf("  [%s] %s: %s\n", iss.Severity, iss.Type, iss.Message)
	}
	if rec.Provider != "" {
		fmt.Printf("  provider %s model %s tokens %d in / %d out\n",
			rec.Provider, rec.Model, rec.Tokens.Input, rec.Tokens.Output)
	}
}

// enqueueCmd defers evaluation: fire-and-forget for callers that must not
// wait on a provider call. A batch run drains the queue later.
var enqueueCmd = &cobra.Command{
	Use:   "enqueue <translation-id>...",
	Short: "Queue translations for a later batch evaluation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, arg := range args {
			for _, field := range strings.Split(arg, ",") {
				id, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
				if err != nil {
					return fmt.Errorf("invalid translation id %q", field)
				}
				if err := s.EnqueueEvaluation(context.Background(), id); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func init() {
	evaluateCmd.Flags().Bool("force-ai", false, "escalate to AI even when heuristics pass")
	evaluateCmd.Flags().Bool("json", false, "output the score record as JSON")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(enqueueCmd)
}
