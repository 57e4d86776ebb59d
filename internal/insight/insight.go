// Package insight turns a balance forecast into tagged, human-readable
// statements about cash health.
package insight

import "strings"

// Tag classifies an insight line.
type Tag string

const (
	TagHeader        Tag = "header"
	TagCritical      Tag = "critical"
	TagWarning       Tag = "warning"
	TagOk            Tag = "ok"
	TagLow           Tag = "low"
	TagHigh          Tag = "high"
	TagTrendWarning  Tag = "trend_warning"
	TagTrendPositive Tag = "trend_positive"
	TagTrendStable   Tag = "trend_stable"
	TagBurnRate      Tag = "burn_rate"
	TagSurplus       Tag = "surplus"
	TagDepletion     Tag = "depletion"
	TagAdvice        Tag = "advice"
	TagNarrative     Tag = "narrative"
)

// Source records which path produced an Insight.
type Source string

const (
	SourceRules     Source = "rules"
	SourceNarrative Source = "narrative"
)

// Line is one tagged statement.
type Line struct {
	Tag  Tag    `json:"tag"`
	Text string `json:"text"`
}

// Insight is the ordered list of statements derived from one forecast.
type Insight struct {
	Lines  []Line `json:"lines"`
	Source Source `json:"source"`
}

// Text joins all lines with newlines.
func (in Insight) Text() string {
	texts := make([]string, len(in.Lines))
	for i, l := range in.Lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

// Count returns how many lines carry tag.
func (in Insight) Count(tag Tag) int {
	n := 0
	for _, l := range in.Lines {
		if l.Tag == tag {
			n++
		}
	}
	return n
}

// Tags returns the tag of every line, in order.
func (in Insight) Tags() []Tag {
	tags := make([]Tag, len(in.Lines))
	for i, l := range in.Lines {
		tags[i] = l.Tag
	}
	return tags
}

func (in *Insight) add(tag Tag, text string) {
	in.Lines = append(in.Lines, Line{Tag: tag, Text: text})
}
