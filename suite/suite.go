// Package suite declares the repository checks as a tree of named groups and
// runs them, either standalone (Run) or as Go subtests (RunT).
package suite

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	sg "github.com/reoring/schemaguard"
)

// Check is one named assertion. Run returns nil when the check passes.
type Check struct {
	Name string
	Run  func() error
}

// Group is a named node of the check tree.
type Group struct {
	Name   string
	Groups []*Group
	Checks []Check
}

// NewGroup returns an empty root group.
func NewGroup(name string) *Group { return &Group{Name: name} }

// Describe appends a child group and lets fn populate it.
func (g *Group) Describe(name string, fn func(*Group)) *Group {
	child := &Group{Name: name}
	g.Groups = append(g.Groups, child)
	if fn != nil {
		fn(child)
	}
	return child
}

// It appends a check to g.
func (g *Group) It(name string, fn func() error) {
	g.Checks = append(g.Checks, Check{Name: name, Run: fn})
}

// Len counts the checks of the tree rooted at g.
func (g *Group) Len() int {
	n := len(g.Checks)
	for _, c := range g.Groups {
		n += c.Len()
	}
	return n
}

// Walk visits every check depth-first; checks of a group come before its
// child groups. path holds the group names from the root down to the check.
func (g *Group) Walk(fn func(path []string, c Check)) {
	g.walk(nil, fn)
}

func (g *Group) walk(parent []string, fn func([]string, Check)) {
	path := append(append([]string(nil), parent...), g.Name)
	for _, c := range g.Checks {
		fn(append(append([]string(nil), path...), c.Name), c)
	}
	for _, child := range g.Groups {
		child.walk(path, fn)
	}
}

// Result is the outcome of one check.
type Result struct {
	Path     []string
	Err      error
	Duration time.Duration
}

// Name joins the path into a single label.
func (r Result) Name() string { return strings.Join(r.Path, " > ") }

// Passed reports whether the check succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// Report collects the results of a run in execution order.
type Report struct {
	Results  []Result
	Duration time.Duration
}

// Failed returns the failing results.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed() {
			out = append(out, res)
		}
	}
	return out
}

// OK reports whether every check passed.
func (r *Report) OK() bool { return len(r.Failed()) == 0 }

// RunOption configures Run.
type RunOption func(*runner)

type runner struct {
	logger *zap.Logger
}

// WithLogger sets the logger Run reports progress to.
func WithLogger(l *zap.Logger) RunOption {
	return func(r *runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// Run executes every check of root sequentially. Checks share the example
// cache, so they never run concurrently.
func Run(root *Group, opts ...RunOption) *Report {
	r := &runner{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	start := time.Now()
	rep := &Report{}
	root.Walk(func(path []string, c Check) {
		res := Result{Path: path}
		t0 := time.Now()
		res.Err = runCheck(c)
		res.Duration = time.Since(t0)
		if res.Err != nil {
			r.logger.Debug("check failed", zap.String("check", res.Name()), zap.Error(res.Err))
		} else {
			r.logger.Debug("check passed", zap.String("check", res.Name()), zap.Duration("duration", res.Duration))
		}
		rep.Results = append(rep.Results, res)
	})
	rep.Duration = time.Since(start)
	r.logger.Info("checks finished",
		zap.Int("total", len(rep.Results)),
		zap.Int("failed", len(rep.Failed())),
		zap.Duration("duration", rep.Duration))
	return rep
}

func runCheck(c Check) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("check panicked: %v", p)
		}
	}()
	return c.Run()
}

// RunT maps root onto nested subtests of t, one per group and check.
func RunT(t *testing.T, root *Group) {
	t.Helper()
	t.Run(root.Name, func(t *testing.T) { runGroupT(t, root) })
}

func runGroupT(t *testing.T, g *Group) {
	for _, c := range g.Checks {
		t.Run(c.Name, func(t *testing.T) {
			if err := runCheck(c); err != nil {
				t.Error(Describe(err))
			}
		})
	}
	for _, child := range g.Groups {
		t.Run(child.Name, func(t *testing.T) { runGroupT(t, child) })
	}
}

// Describe renders a check failure with the expected and actual values of
// its first issue.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var iss sg.Issues
	if !errors.As(err, &iss) || len(iss) == 0 {
		return err.Error()
	}
	it := iss.First()
	var b strings.Builder
	b.WriteString(it.String())
	if it.Expected != nil || it.Actual != nil {
		fmt.Fprintf(&b, "\n  expected: %s\n  actual:   %s", render(it.Expected), render(it.Actual))
	}
	return b.String()
}

func render(v any) string {
	if iss, ok := v.(sg.Issues); ok {
		if len(iss) == 0 {
			return "no errors"
		}
		lines := make([]string, 0, len(iss))
		for _, it := range iss {
			lines = append(lines, "\n    "+it.String())
		}
		return strings.Join(lines, "")
	}
	return fmt.Sprintf("%v", v)
}
