// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package terminology

import (
	"context"
	"fmt"
	"testing"

	"github.com/pdiddy/quality-engine/pkg/types"
)

type staticLookup struct {
	terms []types.GlossaryTerm
	err   error
}

func (s *staticLookup) Terms(_ context.Context, _ int64, _ string) ([]types.GlossaryTerm, error) {
	return s.terms, s.err
}

func glossary() *staticLookup {
	return &staticLookup{terms: []types.GlossaryTerm{
		{SourceTerm: "workspace", TargetTerm: "Arbeitsbereich", TargetLocale: "de"},
		{SourceTerm: "dashboard", TargetTerm: "Dashboard", TargetLocale: "de"},
		{SourceTerm: "billing", TargetTerm: "Abrechnung", TargetLocale: "de"},
	}}
}

func TestValidate_NotApplicable(t *testing.T) {
	res, err := Validate(context.Background(), glossary(), 1, "Save your changes", "Änderungen speichern", "de")
	if err != nil {
		t.Fatal(err)
	}
	if res.Applicable {
		t.Error("Applicable = true, want false when no term matches the source")
	}
	if res.Passed {
		t.Error("non-applicable result must not read as a pass")
	}
}

func TestValidate_AllTermsPresent(t *testing.T) {
	res, err := Validate(context.Background(), glossary(), 1,
		"Open the Workspace settings", "Öffnen Sie die Arbeitsbereich-Einstellungen", "de")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Applicable || !res.Passed {
		t.Errorf("got %+v, want applicable pass", res)
	}
	if res.Score != 100 {
		t.Errorf("score = %d, want 100", res.Score)
	}
	if len(res.Issues) != 0 {
		t.Errorf("issues = %v, want none", res.Issues)
	}
}

func TestValidate_MissingTerm(t *testing.T) {
	res, err := Validate(context.Background(), glossary(), 1,
		"Open the workspace billing page", "Öffnen Sie die Zahlungsseite", "de")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Applicable {
		t.Fatal("Applicable = false, want true")
	}
	if res.Passed {
		t.Error("Passed = true with missing terms")
	}
	if res.Score != 70 {
		t.Errorf("score = %d, want 70 (two missing terms)", res.Score)
	}
	if len(res.Issues) != 1 || res.Issues[0].Type != types.IssueGlossaryMissing {
		t.Fatalf("issues = %v, want one aggregated glossary_missing warning", res.Issues)
	}
	want := []string{"Abrechnung", "Arbeitsbereich"}
	if len(res.MissingTerms) != 2 || res.MissingTerms[0] != want[0] || res.MissingTerms[1] != want[1] {
		t.Errorf("MissingTerms = %v, want %v", res.MissingTerms, want)
	}
}

func TestValidate_CaseInsensitive(t *testing.T) {
	res, err := Validate(context.Background(), glossary(), 1,
		"DASHBOARD overview", "dashboard-Übersicht", "de")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Applicable || !res.Passed {
		t.Errorf("got %+v, want case-insensitive match to pass", res)
	}
}

func TestValidate_ScoreFloor(t *testing.T) {
	lookup := &staticLookup{}
	for i := 0; i < 8; i++ {
		lookup.terms = append(lookup.terms, types.GlossaryTerm{
			SourceTerm: fmt.Sprintf("term%d", i),
			TargetTerm: fmt.Sprintf("Begriff%d", i),
		})
	}
	source := "term0 term1 term2 term3 term4 term5 term6 term7"
	res, err := Validate(context.Background(), lookup, 1, source, "nichts davon", "de")
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 0 {
		t.Errorf("score = %d, want 0 (floored)", res.Score)
	}
}

func TestValidate_LookupError(t *testing.T) {
	lookup := &staticLookup{err: fmt.Errorf("db closed")}
	if _, err := Validate(context.Background(), lookup, 1, "workspace", "x", "de"); err == nil {
		t.Fatal("expected error from failing lookup")
	}
}
