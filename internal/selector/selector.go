// Package selector recommends backlog tasks to work on by scoring them on
// priority and skill match.
//
// Scores are additive out of 100: priority contributes up to 40 and matching
// skills up to 30. The remaining range is unused.
package selector

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/mrz1836/notionflow/internal/constants"
	"github.com/mrz1836/notionflow/internal/domain"
	nferrors "github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/task"
)

// Scoring weights.
const (
	pointsPerSkill = 10
	maxSkillPoints = 30
	maxScore       = 100
)

// Options narrows and sizes a recommendation request.
type Options struct {
	// Skills are matched case-insensitively as substrings of the task title
	// or description.
	Skills []string

	// MaxPriority excludes tasks that outrank it. Empty means no ceiling.
	MaxPriority constants.Priority

	// ExcludePatterns are case-insensitive regular expressions; a task whose
	// title matches any of them is skipped.
	ExcludePatterns []string

	// Count caps the number of results. Zero or less uses the selector default.
	Count int

	// ProjectID keeps only tasks whose version belongs to the project.
	ProjectID string

	// VersionID keeps only tasks in the version.
	VersionID string
}

// Selector ranks backlog tasks.
type Selector struct {
	repo         *task.Repository
	resolver     *task.ProjectResolver
	defaultCount int
	logger       zerolog.Logger
}

// New creates a selector. defaultCount applies when Options.Count is not
// positive.
func New(repo *task.Repository, defaultCount int, logger zerolog.Logger) *Selector {
	if defaultCount <= 0 {
		defaultCount = constants.DefaultRecommendationCount
	}
	return &Selector{
		repo:         repo,
		resolver:     task.NewProjectResolver(repo),
		defaultCount: defaultCount,
		logger:       logger,
	}
}

// PickBestTasks returns up to Count Backlog tasks ordered by score, highest
// first. Ties keep store order.
//
// Returns an error wrapping ErrInvalidArgument for an unknown MaxPriority or
// an exclude pattern that does not compile.
func (s *Selector) PickBestTasks(ctx context.Context, opts Options) ([]domain.TaskRecommendation, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var ceiling int
	if opts.MaxPriority != "" {
		p, ok := constants.ParsePriority(string(opts.MaxPriority))
		if !ok {
			return nil, fmt.Errorf("max priority %q: %w", opts.MaxPriority, nferrors.ErrInvalidArgument)
		}
		ceiling = p.Rank()
	}

	excludes, err := compilePatterns(opts.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListByStatus(ctx, constants.TaskStatusBacklog)
	if err != nil {
		return nil, err
	}

	m := newMatcher(opts.Skills)
	recs := make([]domain.TaskRecommendation, 0, len(tasks))
	for _, t := range tasks {
		if ceiling > 0 && t.Priority.Rank() > ceiling {
			continue
		}
		if excluded(excludes, t.Title) {
			continue
		}
		if opts.VersionID != "" && t.VersionID != opts.VersionID {
			continue
		}
		if opts.ProjectID != "" {
			in, err := s.resolver.InProject(ctx, t, opts.ProjectID)
			if err != nil {
				return nil, err
			}
			if !in {
				continue
			}
		}

		score, reason := m.score(t)
		recs = append(recs, domain.TaskRecommendation{Task: t, MatchScore: score, MatchReason: reason})
	}

	slices.SortStableFunc(recs, func(a, b domain.TaskRecommendation) int {
		return b.MatchScore - a.MatchScore
	})

	count := opts.Count
	if count <= 0 {
		count = s.defaultCount
	}
	if len(recs) > count {
		recs = recs[:count]
	}

	s.logger.Debug().
		Int("candidates", len(tasks)).
		Int("returned", len(recs)).
		Strs("skills", opts.Skills).
		Msg("picked best tasks")
	return recs, nil
}

// Score rates a single task against skills and explains the result.
func Score(t *domain.Task, skills []string) (int, string) {
	return newMatcher(skills).score(t)
}

// matcher holds case-folded skills for one request.
type matcher struct {
	caser  cases.Caser
	skills []string
	folded []string
}

func newMatcher(skills []string) *matcher {
	m := &matcher{caser: cases.Fold()}
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		f := m.caser.String(s)
		if slices.Contains(m.folded, f) {
			continue
		}
		m.skills = append(m.skills, s)
		m.folded = append(m.folded, f)
	}
	return m
}

func (m *matcher) score(t *domain.Task) (int, string) {
	var (
		score int
		parts []string
	)

	if pts := priorityPoints(t.Priority); pts > 0 {
		score += pts
		parts = append(parts, string(t.Priority)+" priority")
	}

	haystack := m.caser.String(t.Title + "\n" + t.Description)
	var matched []string
	for i, f := range m.folded {
		if strings.Contains(haystack, f) {
			matched = append(matched, m.skills[i])
		}
	}
	if len(matched) > 0 {
		score += min(len(matched)*pointsPerSkill, maxSkillPoints)
		parts = append(parts, "matches skills: "+strings.Join(matched, ", "))
	}

	if len(parts) == 0 {
		return 0, "no priority or skill match"
	}
	return min(score, maxScore), strings.Join(parts, ", ")
}

// priorityPoints maps Critical/High/Medium/Low to 40/30/20/10.
func priorityPoints(p constants.Priority) int {
	return p.Rank() * 10
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w: %w", p, nferrors.ErrInvalidArgument, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func excluded(patterns []*regexp.Regexp, title string) bool {
	lower := strings.ToLower(title)
	for _, re := range patterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
