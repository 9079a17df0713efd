// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/quality-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the backing database (init, import, config)",
}

var storeInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		fmt.Println("database ready")
		return nil
	},
}

var storeImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import translation keys and values from a YAML seed file",
	Long: `Import upserts keys and per-language values from a seed file:

    project: 1
    keys:
      - name: greeting
        translations:
          en: "Hello, {name}!"
          de: "Hallo, {name}!"

Re-importing the same file is idempotent; changed values replace the old
ones and their stale cached scores re-evaluate on the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		summary, err := s.ImportTranslations(context.Background(), args[0], os.Stdout)
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d record(s) failed to import", summary.Failed)
		}
		return nil
	},
}

var storeConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Set a project's quality configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetInt64("project")
		if projectID <= 0 {
			return fmt.Errorf("--project is required")
		}
		enabled, _ := cmd.Flags().GetBool("ai-enabled")
		provider, _ := cmd.Flags().GetString("ai-provider")
		model, _ := cmd.Flags().GetString("ai-model")
		scoreAfter, _ := cmd.Flags().GetBool("score-after-ai-translation")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.SetQualityConfig(context.Background(), projectID, types.QualityConfig{
			AIEvaluationEnabled:     enabled,
			AIProvider:              provider,
			AIModel:                 model,
			ScoreAfterAITranslation: scoreAfter,
		})
	},
}

func init() {
	storeConfigCmd.Flags().Int64("project", 0, "project to configure")
	storeConfigCmd.Flags().Bool("ai-enabled", true, "allow AI evaluation for this project")
	storeConfigCmd.Flags().String("ai-provider", "", "override the provider for this project")
	storeConfigCmd.Flags().String("ai-model", "", "override the model for this project")
	storeConfigCmd.Flags().Bool("score-after-ai-translation", false, "queue an evaluation after machine translation")

	storeCmd.AddCommand(storeInitCmd)
	storeCmd.AddCommand(storeImportCmd)
	storeCmd.AddCommand(storeConfigCmd)
	rootCmd.AddCommand(storeCmd)
}
