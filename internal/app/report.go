package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/progcache/internal/core/domain"
	"go.trai.ch/progcache/internal/engine/factory"
	"go.trai.ch/progcache/internal/ui/output"
	"go.trai.ch/progcache/internal/ui/style"
)

// OutcomeFailed marks an entry whose request returned an error.
const OutcomeFailed = "failed"

// Report is the result of one analysis pass.
type Report struct {
	Project string        `json:"project"`
	Workers int           `json:"workers"`
	Entries []Entry       `json:"entries"`
	Stats   []WorkerStats `json:"stats,omitempty"`
}

// Entry describes how one requested file was served.
type Entry struct {
	Path         string   `json:"path"`
	Project      string   `json:"project"`
	Outcome      string   `json:"outcome"`
	Files        int      `json:"files"`
	SyntaxErrors int      `json:"syntaxErrors"`
	Reused       int      `json:"reused,omitempty"`
	Unresolved   []string `json:"unresolved,omitempty"`
	Changed      []string `json:"changed,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// WorkerStats is one worker's cache snapshot with paths relative to the project.
type WorkerStats struct {
	Worker     int          `json:"worker"`
	Size       int          `json:"size"`
	MaxSize    int          `json:"maxSize"`
	PinnedSize int          `json:"pinnedSize"`
	Entries    []EntryStats `json:"entries,omitempty"`
}

// EntryStats is one cached program.
type EntryStats struct {
	Key       string   `json:"key"`
	RootFiles []string `json:"rootFiles"`
	FileCount int      `json:"fileCount"`
	HitCount  int      `json:"hitCount"`
	Live      bool     `json:"live"`
}

func newWorkerStats(baseDir string, id int, stats domain.CacheStats) WorkerStats {
	ws := WorkerStats{
		Worker:     id,
		Size:       stats.Size,
		MaxSize:    stats.MaxSize,
		PinnedSize: stats.PinnedSize,
	}
	for _, e := range stats.Entries {
		roots := make([]string, len(e.RootFiles))
		for i, root := range e.RootFiles {
			roots[i] = relPath(baseDir, root)
		}
		ws.Entries = append(ws.Entries, EntryStats{
			Key:       string(e.Key),
			RootFiles: roots,
			FileCount: e.FileCount,
			HitCount:  e.HitCount,
			Live:      e.Live,
		})
	}
	return ws
}

// Summary counts entries by outcome.
type Summary struct {
	Hit     int
	Rebuilt int
	Built   int
	Failed  int
}

// Summary returns the outcome counts of the report.
func (r *Report) Summary() Summary {
	var s Summary
	for _, e := range r.Entries {
		switch e.Outcome {
		case string(factory.OutcomeHit):
			s.Hit++
		case string(factory.OutcomeRebuilt):
			s.Rebuilt++
		case string(factory.OutcomeBuilt):
			s.Built++
		case OutcomeFailed:
			s.Failed++
		}
	}
	return s
}

// Render writes the report as text.
func (r *Report) Render(w io.Writer) error {
	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(output.ProfileFor(w))
	header := style.Header.Renderer(renderer)
	muted := style.Muted.Renderer(renderer)
	good := style.Good.Renderer(renderer)
	bad := style.Bad.Renderer(renderer)
	notice := style.Notice.Renderer(renderer)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n",
		header.Render("progcache"),
		muted.Render(fmt.Sprintf("%s files=%d workers=%d", r.Project, len(r.Entries), r.Workers)))

	pathWidth, outcomeWidth := 0, 0
	for _, e := range r.Entries {
		pathWidth = max(pathWidth, len(e.Path))
		outcomeWidth = max(outcomeWidth, len(e.Outcome))
	}

	for _, e := range r.Entries {
		icon := good.Render(style.Check)
		switch {
		case e.Outcome == OutcomeFailed:
			icon = bad.Render(style.Cross)
		case e.SyntaxErrors > 0 || len(e.Unresolved) > 0:
			icon = notice.Render(style.Warning)
		}

		line := fmt.Sprintf("  %s %-*s  %-*s", icon, pathWidth, e.Path, outcomeWidth, e.Outcome)
		if e.Outcome == OutcomeFailed {
			line += "  " + bad.Render(e.Error)
		} else {
			line += muted.Render(fmt.Sprintf("  files=%d syntax=%d", e.Files, e.SyntaxErrors))
			if len(e.Changed) > 0 {
				line += muted.Render("  changed: " + strings.Join(e.Changed, ", "))
			}
			if len(e.Unresolved) > 0 {
				line += notice.Render("  unresolved: " + strings.Join(e.Unresolved, ", "))
			}
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}

	s := r.Summary()
	fmt.Fprintf(&b, "\n%d analyzed: %d hit, %d rebuilt, %d built, %d failed\n",
		len(r.Entries), s.Hit, s.Rebuilt, s.Built, s.Failed)

	for _, ws := range r.Stats {
		fmt.Fprintf(&b, "\n%s\n", header.Render(fmt.Sprintf(
			"worker %d: %d/%d programs, %d pinned", ws.Worker, ws.Size, ws.MaxSize, ws.PinnedSize)))
		for _, e := range ws.Entries {
			live := style.Dot
			if !e.Live {
				live = style.Circle
			}
			fmt.Fprintf(&b, "  %s %s files=%d hits=%d\n",
				live, strings.Join(e.RootFiles, ","), e.FileCount, e.HitCount)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
