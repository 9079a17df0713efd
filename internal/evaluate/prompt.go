// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evaluate

import (
	"bytes"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/pdiddy/quality-engine/pkg/types"
)

// systemPrompt is the static scoring rubric. It is identical for every call
// so providers can cache it.
const systemPrompt = `You are a translation quality evaluator for a localization platform. You rate translations of UI strings and product copy against their source text.

Score each target translation on three dimensions, each an integer from 0 to 100:

- accuracy: how faithfully the translation conveys the source meaning.
  90-100: complete and faithful. 70-89: minor meaning drift or omission.
  40-69: a noticeable part of the meaning is lost or changed.
  1-39: largely wrong. 0: not a translation at all.
- fluency: how natural the translation reads to a native speaker of the target language.
  90-100: indistinguishable from native copy. 70-89: understandable with minor awkwardness.
  40-69: stilted or grammatically flawed. 0-39: barely readable.
- terminology: whether domain and product terms are rendered consistently and correctly.
  90-100: all terms correct. 70-89: one questionable term choice.
  40-69: several term problems. 0-39: terminology is unreliable.

If a target text looks like an AI assistant's explanation, apology, or commentary rather than a translation of the source, score its accuracy as 0.

Respond with a single JSON object and nothing else:
{"results": [{"language": "<locale>", "accuracy": <int>, "fluency": <int>, "terminology": <int>, "issues": [{"type": "<short-label>", "severity": "error"|"warning"|"info", "message": "<finding>"}]}]}

Include one entry per target language, in any order. The issues array may be empty.`

// userPromptTmpl renders the per-request content: the key, source text, each
// target translation, and optional sibling-key context.
var userPromptTmpl = template.Must(template.New("evaluate").Parse(`Key: {{.KeyName}}
Source language: {{.SourceName}} ({{.SourceLocale}})
Source text:
{{.SourceText}}

{{- range .Targets}}

Target language: {{.Name}} ({{.Locale}})
Target text:
{{.Text}}
{{- end}}

{{- if .Related}}

Related translations of neighboring keys, for context only:
{{- range .Related}}
- key {{.KeyName}}: "{{.SourceText}}" -> "{{.TargetText}}"
{{- end}}
{{- end}}

Evaluate every target language listed above.`))

type promptTarget struct {
	Locale string
	Name   string
	Text   string
}

type promptData struct {
	KeyName      string
	SourceLocale string
	SourceName   string
	SourceText   string
	Targets      []promptTarget
	Related      []types.RelatedTranslation
}

// localeName returns the English display name for a locale tag, falling back
// to the tag itself when it does not parse.
func localeName(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return locale
}

// buildUserPrompt renders the dynamic half of the evaluation prompt.
func buildUserPrompt(keyName, sourceLocale, sourceText string, targets []promptTarget, related []types.RelatedTranslation) (string, error) {
	data := promptData{
		KeyName:      keyName,
		SourceLocale: sourceLocale,
		SourceName:   localeName(sourceLocale),
		SourceText:   sourceText,
		Targets:      targets,
		Related:      related,
	}
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
