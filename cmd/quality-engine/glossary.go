// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage project glossaries",
}

var glossaryImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import glossary terms for a project",
	Long: `Import reads a YAML term list and upserts it into the project's
glossary. Terms present under the same source term and locale are
updated in place.

The file format:

    terms:
      - source_term: workspace
        target_term: Arbeitsbereich
        target_locale: de`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, _ := cmd.Flags().GetInt64("project")
		if projectID <= 0 {
			return fmt.Errorf("--project is required")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		_, err = s.ImportGlossary(context.Background(), projectID, args[0], os.Stdout)
		return err
	},
}

func init() {
	glossaryImportCmd.Flags().Int64("project", 0, "project the terms belong to")

	glossaryCmd.AddCommand(glossaryImportCmd)
	rootCmd.AddCommand(glossaryCmd)
}
