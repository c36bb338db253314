package threshold

import (
	"fmt"
	"strings"
)

// Observation is a single measured value together with its label.
type Observation struct {
	Label string
	Value float64
}

// Finding is an evaluated observation.
type Finding struct {
	Observation
	Group     string
	Threshold Threshold
	Verdict   Verdict
	Text      string
}

// Renderer builds the text fragment for a finding.
type Renderer func(f *Finding) string

// DefaultRenderer renders "<label> is <STATE>".
func DefaultRenderer(f *Finding) string {
	return fmt.Sprintf("%s is %s", f.Label, f.Verdict)
}

// Item is a single input for Aggregate.
type Item struct {
	Group       string
	Observation Observation
	Threshold   Threshold
}

// Policy controls which findings end up in the message.
type Policy struct {
	// Filter decides if the text of a finding is added to the message, nil keeps everything.
	Filter func(f *Finding) bool

	// Fallback returns the fragment for a group which did not contribute
	// any text. An empty string adds nothing.
	Fallback func(group string) string
}

// Report is the result of a whole check run.
type Report struct {
	Verdict   Verdict
	Findings  []Finding
	Fragments []string
	Message   string
}

// Aggregator collects findings in evaluation order and reduces them to a single verdict.
type Aggregator struct {
	policy    Policy
	findings  []Finding
	fragments []string
	// groups which added at least one fragment
	contributed map[string]bool
}

// NewAggregator creates an Aggregator using the given message policy.
func NewAggregator(policy Policy) *Aggregator {
	return &Aggregator{
		policy:      policy,
		contributed: make(map[string]bool),
	}
}

// KeepProblems returns a filter which keeps warnings and criticals and,
// if includeOK is set, ok findings as well.
func KeepProblems(includeOK bool) func(f *Finding) bool {
	return func(f *Finding) bool {
		return f.Verdict != OK || includeOK
	}
}

// Add evaluates the observation and appends the finding.
func (a *Aggregator) Add(group string, obs Observation, th Threshold, render Renderer) Finding {
	finding := Finding{
		Observation: obs,
		Group:       group,
		Threshold:   th,
		Verdict:     Evaluate(obs.Value, th),
	}
	if render == nil {
		render = DefaultRenderer
	}
	finding.Text = render(&finding)
	a.findings = append(a.findings, finding)

	if a.policy.Filter == nil || a.policy.Filter(&finding) {
		a.AddFragment(group, finding.Text)
	}

	return finding
}

// AddFragment appends a plain text fragment for the given group.
func (a *Aggregator) AddFragment(group, text string) {
	a.fragments = append(a.fragments, text)
	a.contributed[group] = true
}

// CloseGroup applies the fallback for groups without any fragment so far.
func (a *Aggregator) CloseGroup(group string) {
	if a.policy.Fallback == nil || a.contributed[group] {
		return
	}
	if text := a.policy.Fallback(group); text != "" {
		a.AddFragment(group, text)
	}
}

// Verdict returns the most severe verdict of all findings or OK if there are none.
func (a *Aggregator) Verdict() Verdict {
	res := OK
	for i := range a.findings {
		res = res.Escalate(a.findings[i].Verdict)
	}

	return res
}

// Findings returns all findings in evaluation order.
func (a *Aggregator) Findings() []Finding {
	return a.findings
}

// Fragments returns the message fragments in evaluation order.
func (a *Aggregator) Fragments() []string {
	return a.fragments
}

// Report joins all fragments with sep.
func (a *Aggregator) Report(sep string) Report {
	return Report{
		Verdict:   a.Verdict(),
		Findings:  a.findings,
		Fragments: a.fragments,
		Message:   strings.Join(a.fragments, sep),
	}
}

// Aggregate evaluates all items in order. Groups are closed when the next
// item belongs to a different group and after the last item.
func Aggregate(items []Item, policy Policy, render Renderer, sep string) Report {
	agg := NewAggregator(policy)
	for i, item := range items {
		agg.Add(item.Group, item.Observation, item.Threshold, render)
		if i == len(items)-1 || items[i+1].Group != item.Group {
			agg.CloseGroup(item.Group)
		}
	}

	return agg.Report(sep)
}
