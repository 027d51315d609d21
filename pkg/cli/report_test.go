package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"p3a-hq/manifest/pkg/mdl/compiler"
	mdlErrors "p3a-hq/manifest/pkg/mdl/errors"
	"p3a-hq/manifest/pkg/mdl/grammar"
	"p3a-hq/manifest/pkg/mdl/manifest"
	"p3a-hq/manifest/pkg/mdl/schema"
	"p3a-hq/manifest/pkg/mdl/tree"
	"p3a-hq/manifest/pkg/processing"
)

func failedReport() *processing.Report {
	bogus := mdlErrors.NewViolationList()
	bogus.AddViolationWithSuggestion(mdlErrors.ViolationStructural,
		"Invalid enum value. Expected 'typical' | 'express' | 'slow', received 'typcal'",
		mdlErrors.ParsePath("cadence"),
		tree.Location{File: "metrics/Brave.Core.Bogus.yaml", Line: 1, Column: 10},
		"Did you mean 'typical'?")
	bogus.Violations[0].Context = "->  1 | cadence: typcal\n          ^\n"
	bogus.AddViolation(mdlErrors.ViolationStructural, "Unrecognized key: 'owner'", mdlErrors.ParsePath("owner"), tree.Location{})

	broken := mdlErrors.NewViolationList()
	broken.AddViolation(mdlErrors.ViolationSyntax, "did not find expected ',' or ']'", nil, tree.Location{File: "metrics/Brave.Core.Broken.yaml", Line: 2, Column: 1})

	result := &compiler.Result{
		Total:      3,
		Failed:     2,
		Generation: grammar.GenerationCompositional,
		Diagnostics: []compiler.EntryDiagnostics{
			{Name: "Brave.Core.Bogus", Path: "metrics/Brave.Core.Bogus.yaml", Violations: bogus},
			{Name: "Brave.Core.Broken", Path: "metrics/Brave.Core.Broken.yaml", Violations: broken},
		},
	}
	return &processing.Report{
		BuildID:    "b-1",
		Generation: grammar.GenerationCompositional,
		Result:     result,
		Err:        &compiler.BuildError{Total: 3, Failed: 2, Diagnostics: result.Diagnostics},
	}
}

func successReport(outputPath string) *processing.Report {
	raw := tree.Map("cadence", tree.Str("typical"))
	decls := map[string]*schema.Declaration{
		"Brave.A": {Raw: raw},
		"Brave.B": {Raw: raw},
	}
	return &processing.Report{
		BuildID:    "b-2",
		Generation: grammar.GenerationCompositional,
		Result:     &compiler.Result{Total: 2, Declarations: decls},
		Manifest:   manifest.Assemble(decls),
		OutputPath: outputPath,
		Digest:     "d1",
	}
}

func TestWriteReport_TextFailure(t *testing.T) {
	tests := []struct {
		name string
		opts ReportOptions
		want string
	}{
		{
			name: "plain",
			want: "Validation errors in Brave.Core.Bogus.yaml:\n" +
				"  - Invalid enum value. Expected 'typical' | 'express' | 'slow', received 'typcal' at cadence\n" +
				"  - Unrecognized key: 'owner' at owner\n" +
				"Validation errors in Brave.Core.Broken.yaml:\n" +
				"  - did not find expected ',' or ']'\n" +
				"Build failed due to validation errors\n",
		},
		{
			name: "with suggestions and context",
			opts: ReportOptions{Context: true, Suggestions: true},
			want: "Validation errors in Brave.Core.Bogus.yaml:\n" +
				"  - Invalid enum value. Expected 'typical' | 'express' | 'slow', received 'typcal' at cadence\n" +
				"    Did you mean 'typical'?\n" +
				"    ->  1 | cadence: typcal\n" +
				"              ^\n" +
				"  - Unrecognized key: 'owner' at owner\n" +
				"Validation errors in Brave.Core.Broken.yaml:\n" +
				"  - did not find expected ',' or ']'\n" +
				"Build failed due to validation errors\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			if err := WriteReport(&out, &errOut, FormatText, failedReport(), tt.opts); err != nil {
				t.Fatalf("WriteReport() error = %v", err)
			}
			if out.Len() != 0 {
				t.Errorf("stdout = %q, want empty", out.String())
			}
			if errOut.String() != tt.want {
				t.Errorf("stderr =\n%s\nwant\n%s", errOut.String(), tt.want)
			}
		})
	}
}

func TestWriteReport_TextSuccess(t *testing.T) {
	tests := []struct {
		name   string
		report *processing.Report
		want   string
	}{
		{"build", successReport("dist/p3a_manifest.json"), "Generated p3a_manifest.json with 2 metrics\n"},
		{"lint", successReport(""), "Validated 2 declarations\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			if err := WriteReport(&out, &errOut, FormatText, tt.report, ReportOptions{}); err != nil {
				t.Fatalf("WriteReport() error = %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("stdout = %q, want %q", out.String(), tt.want)
			}
			if errOut.Len() != 0 {
				t.Errorf("stderr = %q, want empty", errOut.String())
			}
		})
	}
}

func TestWriteReport_TextOtherError(t *testing.T) {
	var out, errOut bytes.Buffer
	r := &processing.Report{Err: errors.New("failed to read metrics directory")}
	if err := WriteReport(&out, &errOut, FormatText, r, ReportOptions{}); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if out.Len() != 0 || errOut.Len() != 0 {
		t.Errorf("WriteReport() wrote %q / %q, want nothing", out.String(), errOut.String())
	}
}

func TestWriteReport_JSON(t *testing.T) {
	var out, errOut bytes.Buffer
	if err := WriteReport(&out, &errOut, FormatJSON, failedReport(), ReportOptions{}); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	var got Report
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if got.OK || got.Failed != 2 || got.Violations != 3 || len(got.Files) != 2 {
		t.Errorf("report = %+v", got)
	}
	first := got.Files[0].Violations[0]
	if first.Path != "cadence" || first.Line != 1 || first.Suggestion == "" || first.Type != "structural" {
		t.Errorf("first violation = %+v", first)
	}
	if got.Error == "" {
		t.Error("failed report should carry the error")
	}
}

func TestParseFormat_Report(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
