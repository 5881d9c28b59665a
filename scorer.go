package main

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Weights are the coefficients of the priority formula. Two presets exist;
// anything in between can be built by hand.
type Weights struct {
	Age               float64
	Comments          float64
	HighLabelBonus    float64
	MediumLabelBonus  float64
	GoodFirstBonus    float64
	HelpWantedBonus   float64
	BeginnerBonus     float64
	ExpertiseBonus    float64
	PreferenceBonus   float64
	BodyLengthPenalty float64
	CodeBlockPenalty  float64
}

// DefaultWeights favors engagement and contributor signals.
func DefaultWeights() Weights {
	return Weights{
		Age:               0.3,
		Comments:          1.5,
		HighLabelBonus:    10,
		MediumLabelBonus:  5,
		GoodFirstBonus:    15,
		HelpWantedBonus:   10,
		BeginnerBonus:     8,
		ExpertiseBonus:    5,
		PreferenceBonus:   8,
		BodyLengthPenalty: 0.01,
		CodeBlockPenalty:  2,
	}
}

// MinimalWeights ranks by age, engagement and the label tiers alone, with
// the contributor, expertise and preference bonuses switched off.
func MinimalWeights() Weights {
	return Weights{
		Age:               0.5,
		Comments:          2,
		HighLabelBonus:    10,
		MediumLabelBonus:  5,
		BodyLengthPenalty: 0.01,
		CodeBlockPenalty:  2,
	}
}

// Fallback tiers used when the config file does not define its own.
var (
	defaultHighPriorityLabels   = []string{"bug", "critical", "security"}
	defaultMediumPriorityLabels = []string{"enhancement", "priority"}
)

// TimestampError reports an issue whose created_at could not be parsed.
// Scoring treats this as a hard error rather than skipping the issue.
type TimestampError struct {
	IssueNumber int
	Value       string
	Err         error
}

func (e *TimestampError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("issue #%d has no created_at timestamp", e.IssueNumber)
	}
	return fmt.Sprintf("issue #%d has unparsable created_at %q: %v", e.IssueNumber, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() error {
	return e.Err
}

type Scorer struct {
	weights        Weights
	highLabels     []string
	mediumLabels   []string
	expertise      []string
	preferredTypes []string
	now            func() time.Time
}

func NewScorer(config *Config, weights Weights) *Scorer {
	high := config.GitHub.IssuePriorities.High
	if len(high) == 0 {
		high = defaultHighPriorityLabels
	}
	medium := config.GitHub.IssuePriorities.Medium
	if len(medium) == 0 {
		medium = defaultMediumPriorityLabels
	}

	return &Scorer{
		weights:        weights,
		highLabels:     high,
		mediumLabels:   medium,
		expertise:      config.Agent.UserExpertise,
		preferredTypes: config.Actions.ContributionPreferences.IssueTypes,
		now:            time.Now,
	}
}

// Prioritize annotates every issue with its priority score and the derived
// flags, then returns the set sorted by descending score. The sort is
// stable, so ties keep their fetch order. A bad created_at aborts the whole
// run with a TimestampError.
func (s *Scorer) Prioritize(issues []Issue) ([]Issue, error) {
	scored := make([]Issue, len(issues))
	for i, issue := range issues {
		ageDays, err := s.ageDays(issue)
		if err != nil {
			return nil, err
		}

		labels := lowercaseAll(issue.Labels)

		labelScore := s.labelScore(labels)
		contributorMatches, contributorScore := s.contributorScore(labels)
		expertiseMatches, expertiseScore := s.expertiseScore(issue)
		preferenceScore := s.preferenceScore(labels)
		penalty := complexityPenalty(issue.Body, s.weights)

		issue.PriorityScore = float64(ageDays)*s.weights.Age +
			float64(issue.Comments)*s.weights.Comments +
			labelScore +
			contributorScore +
			expertiseScore +
			preferenceScore -
			penalty
		issue.ExpertiseMatch = expertiseMatches > 0
		issue.ContributorFriendly = contributorMatches > 0
		issue.ComplexityEstimate = complexityFromPenalty(penalty)
		issue.Scored = true

		scored[i] = issue
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].PriorityScore > scored[j].PriorityScore
	})
	return scored, nil
}

func (s *Scorer) ageDays(issue Issue) (int, error) {
	if issue.CreatedAt == "" {
		return 0, &TimestampError{IssueNumber: issue.Number}
	}
	created, err := time.Parse(issueTimeLayout, issue.CreatedAt)
	if err != nil {
		return 0, &TimestampError{IssueNumber: issue.Number, Value: issue.CreatedAt, Err: err}
	}
	return int(s.now().UTC().Sub(created).Hours() / 24), nil
}

// labelScore sums the tier bonuses per label: a label containing a high-tier
// term earns the high bonus, a medium-tier term the medium bonus. Matching
// is case-insensitive substring containment, not equality.
func (s *Scorer) labelScore(labels []string) float64 {
	var score float64
	for _, label := range labels {
		if containsAnyTerm(label, s.highLabels) {
			score += s.weights.HighLabelBonus
		}
		if containsAnyTerm(label, s.mediumLabels) {
			score += s.weights.MediumLabelBonus
		}
	}
	return score
}

func (s *Scorer) contributorScore(labels []string) (matches int, score float64) {
	if anyLabelContains(labels, "good first issue") {
		matches++
		score += s.weights.GoodFirstBonus
	}
	if anyLabelContains(labels, "help wanted") {
		matches++
		score += s.weights.HelpWantedBonus
	}
	if anyLabelContains(labels, "beginner") {
		matches++
		score += s.weights.BeginnerBonus
	}
	return matches, score
}

func (s *Scorer) expertiseScore(issue Issue) (matches int, score float64) {
	text := strings.ToLower(issue.Title + " " + issue.Body)
	for _, area := range s.expertise {
		if area == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(area)) {
			matches++
			score += s.weights.ExpertiseBonus
		}
	}
	return matches, score
}

func (s *Scorer) preferenceScore(labels []string) float64 {
	var score float64
	for _, issueType := range s.preferredTypes {
		if anyLabelContains(labels, strings.ToLower(issueType)) {
			score += s.weights.PreferenceBonus
		}
	}
	return score
}

// complexityPenalty charges for long bodies and fenced code blocks. Fences
// are counted in pairs via integer division, so an odd trailing fence is
// not charged.
func complexityPenalty(body string, weights Weights) float64 {
	codeBlocks := strings.Count(body, "```") / 2
	return float64(len(body))*weights.BodyLengthPenalty + float64(codeBlocks)*weights.CodeBlockPenalty
}

func complexityFromPenalty(penalty float64) Complexity {
	switch {
	case penalty > 15:
		return ComplexityHigh
	case penalty > 5:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

func lowercaseAll(values []string) []string {
	lowered := make([]string, len(values))
	for i, v := range values {
		lowered[i] = strings.ToLower(v)
	}
	return lowered
}

func containsAnyTerm(label string, terms []string) bool {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(label, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func anyLabelContains(labels []string, term string) bool {
	for _, label := range labels {
		if strings.Contains(label, term) {
			return true
		}
	}
	return false
}
