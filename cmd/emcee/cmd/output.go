package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/corey/emcee/internal/domain/corpus"
	"github.com/corey/emcee/internal/domain/search"
	"github.com/corey/emcee/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// paint wraps s in color when color output is enabled.
func paint(color, s string, enabled bool) string {
	if !enabled {
		return s
	}
	return color + s + colorReset
}

// formatStep formats the baseline or an accepted improvement.
//
//	#   412  0.0031250  key=qwertyuiop…  the quick brown fox…
func formatStep(s search.Step, color bool) string {
	return fmt.Sprintf("%s  %s  %s  %s",
		paint(colorGray, fmt.Sprintf("#%6d", s.Iteration), color),
		paint(colorGreen, fmt.Sprintf("%.7f", s.Score), color),
		paint(colorCyan, "key="+s.Key.Image(), color),
		preview(s.Plaintext, 60),
	)
}

// formatResult formats the summary of a finished walk.
func formatResult(run *ports.Run, color bool) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("⚡ %d iterations, %d accepted", run.Iterations, run.Accepted), color))
	sb.WriteString(fmt.Sprintf(" │ score %.7f │ %s\n", run.Score, run.Reference))
	sb.WriteString(fmt.Sprintf("  Key:    %s → %s\n", run.Alphabet, paint(colorCyan, run.Key, color)))
	sb.WriteString(fmt.Sprintf("  Run:    %s\n", paint(colorGray, run.ID, color)))
	sb.WriteString(run.Plaintext)
	if !strings.HasSuffix(run.Plaintext, "\n") {
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatLetters formats a unigram table, most frequent first.
func formatLetters(rows []corpus.LetterCount, color bool) string {
	var total uint64
	for _, r := range rows {
		total += r.Count
	}

	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("⚡ %d symbols, %d total", len(rows), total), color))
	sb.WriteString("\n")
	for _, r := range rows {
		share := float64(r.Count) / float64(total)
		sb.WriteString(fmt.Sprintf("  %s  %8d  %s\n",
			paint(colorCyan, fmt.Sprintf("%-6q", r.Symbol), color),
			r.Count,
			paint(colorGray, fmt.Sprintf("%6.2f%%", share*100), color),
		))
	}
	return sb.String()
}

// formatModels formats stored model summaries.
func formatModels(infos []ports.ModelInfo, color bool) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("⚡ %d models", len(infos)), color))
	sb.WriteString("\n")
	for _, m := range infos {
		sb.WriteString(fmt.Sprintf("  %s  %s transitions, %s total  boundary=%q  %s\n",
			paint(colorCyan, m.Name, color),
			paint(colorMagenta, fmt.Sprint(m.Transitions), color),
			fmt.Sprint(m.Total),
			m.Boundary,
			paint(colorGray, formatTime(m.CreatedAt), color),
		))
	}
	return sb.String()
}

// formatRuns formats recorded runs, oldest first.
func formatRuns(runs []*ports.Run, color bool) string {
	var sb strings.Builder
	sb.WriteString(paint(colorBold, fmt.Sprintf("⚡ %d runs", len(runs)), color))
	sb.WriteString("\n")
	for _, r := range runs {
		sb.WriteString(fmt.Sprintf("  %s  %s  seed=%d  %d/%d  %s  %s\n",
			paint(colorGray, formatTime(r.CreatedAt), color),
			paint(colorGreen, fmt.Sprintf("%.7f", r.Score), color),
			r.Seed,
			r.Accepted, r.Iterations,
			paint(colorMagenta, r.Reference, color),
			preview(r.Plaintext, 40),
		))
	}
	return sb.String()
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).Format("2006-01-02 15:04")
}

// preview flattens newlines and truncates to n symbols.
func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
