package app_test

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/progcache/internal/app"
)

func TestReport_Render(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	report := &app.Report{
		Project: "tsconfig.json",
		Workers: 2,
		Entries: []app.Entry{
			{Path: "src/main.ts", Outcome: "rebuilt", Files: 3, Changed: []string{"src/util.ts"}},
			{Path: "src/util.ts", Outcome: "hit", Files: 3},
			{Path: "src/broken.ts", Outcome: "built", Files: 1, SyntaxErrors: 2},
			{Path: "src/gone.ts", Outcome: app.OutcomeFailed, Error: "program build failed: source file not found"},
		},
		Stats: []app.WorkerStats{
			{
				Worker: 0, Size: 2, MaxSize: 8, PinnedSize: 5,
				Entries: []app.EntryStats{
					{RootFiles: []string{"src/main.ts", "src/util.ts"}, FileCount: 3, HitCount: 4, Live: true},
					{RootFiles: []string{"src/broken.ts"}, FileCount: 1, Live: false},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf))

	g := goldie.New(t)
	g.Assert(t, "report_render", buf.Bytes())
}

func TestReport_Summary(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []string
		want     app.Summary
	}{
		{name: "empty", want: app.Summary{}},
		{name: "mixed", outcomes: []string{"hit", "hit", "built", "rebuilt", "failed"}, want: app.Summary{Hit: 2, Rebuilt: 1, Built: 1, Failed: 1}},
		{name: "unknown ignored", outcomes: []string{"skipped"}, want: app.Summary{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := &app.Report{}
			for _, o := range tt.outcomes {
				report.Entries = append(report.Entries, app.Entry{Outcome: o})
			}
			assert.Equal(t, tt.want, report.Summary())
		})
	}
}
