package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	j "github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	sg "github.com/reoring/schemaguard"
	"github.com/reoring/schemaguard/suite"
)

// newLogger writes human-readable logs to w at lvl.
func newLogger(lvl zapcore.Level, w io.Writer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), lvl)
	return zap.New(core)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	groupStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).PaddingLeft(4)
)

func writeText(w io.Writer, reports []*suite.Report) error {
	var b strings.Builder
	total, failed := 0, 0
	for _, rep := range reports {
		var last []string
		for _, res := range rep.Results {
			groups := res.Path[:len(res.Path)-1]
			changed := false
			for i := range groups {
				if !changed && i < len(last) && last[i] == groups[i] {
					continue
				}
				changed = true
				indent := strings.Repeat("  ", i)
				if i == 0 {
					b.WriteString(headerStyle.Render(groups[i]) + "\n")
				} else {
					b.WriteString(indent + groupStyle.Render(groups[i]) + "\n")
				}
			}
			last = groups

			indent := strings.Repeat("  ", len(groups))
			name := res.Path[len(res.Path)-1]
			total++
			if res.Passed() {
				b.WriteString(indent + passStyle.Render("✓") + " " + name + "\n")
				continue
			}
			failed++
			b.WriteString(indent + failStyle.Render("✗") + " " + name + "\n")
			for _, line := range strings.Split(suite.Describe(res.Err), "\n") {
				b.WriteString(indent + detailStyle.Render(line) + "\n")
			}
		}
	}
	summary := fmt.Sprintf("\n%d checks, %d failed", total, failed)
	if failed > 0 {
		b.WriteString(failStyle.Render(summary) + "\n")
	} else {
		b.WriteString(passStyle.Render(summary) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type jsonResult struct {
	Path       []string  `json:"path"`
	Passed     bool      `json:"passed"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Issue      *sg.Issue `json:"issue,omitempty"`
}

type jsonReport struct {
	Total   int          `json:"total"`
	Failed  int          `json:"failed"`
	Results []jsonResult `json:"results"`
}

func writeJSON(w io.Writer, reports []*suite.Report) error {
	out := jsonReport{Results: []jsonResult{}}
	for _, rep := range reports {
		for _, res := range rep.Results {
			jr := jsonResult{
				Path:       res.Path,
				Passed:     res.Passed(),
				DurationMS: float64(res.Duration) / float64(time.Millisecond),
			}
			if !res.Passed() {
				out.Failed++
				jr.Error = res.Err.Error()
				if iss, ok := sg.AsIssues(res.Err); ok && len(iss) > 0 {
					it := iss.First()
					jr.Issue = &it
				}
			}
			out.Total++
			out.Results = append(out.Results, jr)
		}
	}
	enc := j.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
