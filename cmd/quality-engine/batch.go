// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/quality-engine/internal/batch"
	"github.com/pdiddy/quality-engine/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch [translation-id...]",
	Short: "Score many translations in one job",
	Long: `Batch evaluates a set of translations: identifiers from the command
line, a whole project via --project, or the deferred-evaluation queue via
--from-queue. Translations are grouped by key so each key costs at most
one AI call, and a bounded worker pool processes keys in waves.

Individual failures never abort the job; the summary lists them.`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	forceAI, _ := cmd.Flags().GetBool("force-ai")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	fromQueue, _ := cmd.Flags().GetBool("from-queue")
	projectID, _ := cmd.Flags().GetInt64("project")
	outPath, _ := cmd.Flags().GetString("out")

	if concurrency <= 0 {
		concurrency = engineConfig().Batch.Concurrency
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()

	var ids []int64
	switch {
	case fromQueue:
		ids, err = s.PendingEvaluations(ctx, 0)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("queue is empty")
			return nil
		}
	case projectID > 0:
		ids, err = s.TranslationIDs(ctx, projectID, viper.GetString("source_locale"))
		if err != nil {
			return err
		}
	default:
		if len(args) == 0 {
			return fmt.Errorf("nothing to evaluate: pass translation ids, --project, or --from-queue")
		}
		for _, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid translation id %q", arg)
			}
			ids = append(ids, id)
		}
	}

	c := &batch.Coordinator{
		Orchestrator: newOrchestrator(s),
		Concurrency:  concurrency,
		Progress: func(p types.Progress) {
			fmt.Fprintf(os.Stderr, "progress: %d/%d\n", p.Processed, p.Total)
		},
	}
	res, err := c.Run(ctx, batch.Request{TranslationIDs: ids, ForceAI: forceAI}, os.Stdout)
	if err != nil {
		return err
	}

	if fromQueue {
		// Only successfully scored items leave the queue; failures stay for
		// the next run.
		done := make([]int64, 0, len(res.Records))
		for _, rec := range res.Records {
			done = append(done, rec.TranslationID)
		}
		if err := s.AcknowledgeEvaluations(ctx, done); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not acknowledge queue entries: %v\n", err)
		}
	}

	if outPath != "" {
		if err := res.WriteYAML(outPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
	}

	if res.Summary.HasFailures() {
		return fmt.Errorf("%d translation(s) failed evaluation", res.Summary.Failed)
	}
	return nil
}

func init() {
	batchCmd.Flags().Bool("force-ai", false, "escalate every key to AI even when heuristics pass")
	batchCmd.Flags().Int("concurrency", 0, "parallel key evaluations (0 = configured default)")
	batchCmd.Flags().Bool("from-queue", false, "evaluate queued translations instead of arguments")
	batchCmd.Flags().Int64("project", 0, "evaluate every translation of a project")
	batchCmd.Flags().String("out", "", "write the job result to a YAML file")

	rootCmd.AddCommand(batchCmd)
}
