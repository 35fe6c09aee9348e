// Package collector produces contribution facts from the GitHub API.
// The Collector interface is the seam between the snapshot browser and the
// external data source; GitHub is its production implementation.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/robby/orgpulse/internal/domain"
)

// ErrNoRepositories indicates the organization has no repositories matching
// the request.
var ErrNoRepositories = errors.New("no repositories found")

// LineSampleCap bounds how many of the most recent commits per repository
// are inspected for line-change totals. Commit counts are not affected by
// this cap; it only bounds the per-commit detail calls.
const LineSampleCap = 15

// commitDetailWorkers bounds concurrent per-commit detail fetches.
const commitDetailWorkers = 4

// TimeWindow is the half-open interval facts are collected for.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Request describes one collection run.
type Request struct {
	Organization   string
	Window         TimeWindow
	RepoPattern    string // Optional glob or substring filter on repo names
	IncludePrivate bool
	MaxRepos       int // 0 means no limit
}

// Collector produces the contribution facts for one organization and time
// window. Implementations must exclude bot accounts and tolerate individual
// per-repository failures without aborting the run.
type Collector interface {
	Collect(ctx context.Context, req Request) ([]domain.ContributionFact, error)
}

// Options tunes the GitHub collector's pacing and filtering.
type Options struct {
	// Delay is inserted between per-repository API call groups.
	Delay time.Duration
	// QuotaThreshold triggers a slow-down when the remaining core quota
	// reported by GitHub drops below it.
	QuotaThreshold int
	// QuotaBackoff is the extra sleep applied once below QuotaThreshold.
	QuotaBackoff time.Duration
	// Bots filters automation accounts out of authors and reviewers.
	Bots   *domain.BotFilter
	Logger *slog.Logger
}

func (o *Options) setDefaults() {
	if o.Delay == 0 {
		o.Delay = 500 * time.Millisecond
	}
	if o.QuotaThreshold == 0 {
		o.QuotaThreshold = 100
	}
	if o.QuotaBackoff == 0 {
		o.QuotaBackoff = 30 * time.Second
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// GitHub collects contribution facts over the GitHub REST API. The client
// transport sleeps through secondary rate limits; Options.Delay provides the
// steady-state pacing between repositories.
type GitHub struct {
	client *github.Client
	opts   Options
}

// NewGitHub builds a collector authenticated with the given token.
func NewGitHub(token string, opts Options) (*GitHub, error) {
	opts.setDefaults()
	waiter, err := github_ratelimit.NewRateLimitWaiter(nil,
		github_ratelimit.WithSingleSleepLimit(time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("create rate limit waiter: %w", err)
	}
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   waiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		},
	}
	return &GitHub{client: github.NewClient(httpClient), opts: opts}, nil
}

// Collect gathers facts for every matching repository of the organization.
// Individual repository failures are logged and skipped; the run fails only
// when the repository listing itself fails or nothing matches.
func (g *GitHub) Collect(ctx context.Context, req Request) ([]domain.ContributionFact, error) {
	repos, err := g.listRepos(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("%w for org %s", ErrNoRepositories, req.Organization)
	}

	builder := NewBuilder(g.opts.Bots)
	for i, repo := range repos {
		if i > 0 {
			if err := sleepCtx(ctx, g.opts.Delay); err != nil {
				return nil, err
			}
		}
		if err := g.collectRepo(ctx, req, repo, builder); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.opts.Logger.Warn("skipping repository",
				"org", req.Organization, "repo", repo, "error", err)
		}
	}
	return builder.Facts(), nil
}

func (g *GitHub) listRepos(ctx context.Context, req Request) ([]string, error) {
	repoType := "public"
	if req.IncludePrivate {
		repoType = "all"
	}
	opt := &github.RepositoryListByOrgOptions{
		Type:        repoType,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var names []string
	for {
		repos, resp, err := g.client.Repositories.ListByOrg(ctx, req.Organization, opt)
		if err != nil {
			return nil, fmt.Errorf("list repos for %s: %w", req.Organization, err)
		}
		for _, r := range repos {
			name := r.GetName()
			if !matchRepo(req.RepoPattern, name) {
				continue
			}
			names = append(names, name)
			if req.MaxRepos > 0 && len(names) >= req.MaxRepos {
				return names, nil
			}
		}
		g.checkQuota(ctx, resp)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return names, nil
}

// matchRepo accepts a glob pattern or, when the pattern contains no glob
// metacharacters, a case-insensitive substring.
func matchRepo(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	if strings.ContainsAny(pattern, "*?[") {
		ok, err := path.Match(pattern, name)
		return err == nil && ok
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}

func (g *GitHub) collectRepo(ctx context.Context, req Request, repo string, builder *Builder) error {
	org := req.Organization
	commits, err := g.listCommits(ctx, org, repo, req.Window.Start)
	if err != nil {
		return fmt.Errorf("list commits: %w", err)
	}
	for _, c := range commits {
		builder.AddCommit(org, repo, commitLogin(c))
	}
	if len(commits) == 0 {
		// A repo with no commits in the window contributes nothing.
		return nil
	}

	if err := g.sampleLines(ctx, org, repo, commits, builder); err != nil {
		return fmt.Errorf("sample commit lines: %w", err)
	}
	if err := g.countReviews(ctx, org, repo, req.Window.Start, builder); err != nil {
		return fmt.Errorf("count reviews: %w", err)
	}
	return nil
}

// listCommits returns the repository's commits since the window start,
// newest first, trying the default branch and falling back to master.
func (g *GitHub) listCommits(ctx context.Context, org, repo string, since time.Time) ([]*github.RepositoryCommit, error) {
	for _, branch := range []string{"", "master"} {
		commits, err := g.listCommitsOnBranch(ctx, org, repo, branch, since)
		if err == nil {
			return commits, nil
		}
		var ghErr *github.ErrorResponse
		if !(errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func (g *GitHub) listCommitsOnBranch(ctx context.Context, org, repo, branch string, since time.Time) ([]*github.RepositoryCommit, error) {
	opt := &github.CommitsListOptions{
		SHA:         branch,
		Since:       since,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var all []*github.RepositoryCommit
	for {
		commits, resp, err := g.client.Repositories.ListCommits(ctx, org, repo, opt)
		if err != nil {
			return nil, err
		}
		all = append(all, commits...)
		g.checkQuota(ctx, resp)
		if resp.NextPage == 0 {
			return all, nil
		}
		opt.Page = resp.NextPage
	}
}

// sampleLines fetches per-commit additions and deletions for up to
// LineSampleCap of the most recent commits and attributes the totals to the
// commit author.
func (g *GitHub) sampleLines(ctx context.Context, org, repo string, commits []*github.RepositoryCommit, builder *Builder) error {
	sample := commits
	if len(sample) > LineSampleCap {
		sample = sample[:LineSampleCap]
	}

	type lineCount struct {
		author string
		lines  int64
	}
	counts := make([]lineCount, len(sample))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(commitDetailWorkers)
	for i, c := range sample {
		eg.Go(func() error {
			detail, _, err := g.client.Repositories.GetCommit(egCtx, org, repo, c.GetSHA(), nil)
			if err != nil {
				return err
			}
			st := detail.GetStats()
			counts[i] = lineCount{
				author: commitLogin(c),
				lines:  int64(st.GetAdditions() + st.GetDeletions()),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, lc := range counts {
		builder.AddLines(org, repo, lc.author, lc.lines)
	}
	return nil
}

// countReviews walks pull requests by descending update time and counts
// reviews submitted after the window start. PRs untouched since the window
// started cannot carry qualifying reviews, so the walk stops there.
func (g *GitHub) countReviews(ctx context.Context, org, repo string, since time.Time, builder *Builder) error {
	opt := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 50},
	}
	for {
		prs, resp, err := g.client.PullRequests.List(ctx, org, repo, opt)
		if err != nil {
			return err
		}
		for _, pr := range prs {
			if pr.GetUpdatedAt().Time.Before(since) {
				return nil
			}
			reviews, _, err := g.client.PullRequests.ListReviews(ctx, org, repo, pr.GetNumber(), nil)
			if err != nil {
				return err
			}
			for _, rv := range reviews {
				if rv.GetSubmittedAt().Time.Before(since) {
					continue
				}
				builder.AddReview(org, repo, rv.GetUser().GetLogin())
			}
		}
		g.checkQuota(ctx, resp)
		if resp.NextPage == 0 {
			return nil
		}
		opt.Page = resp.NextPage
	}
}

// checkQuota slows the run down once the remaining core quota drops below
// the configured threshold.
func (g *GitHub) checkQuota(ctx context.Context, resp *github.Response) {
	if resp == nil || resp.Rate.Remaining >= g.opts.QuotaThreshold {
		return
	}
	g.opts.Logger.Info("rate limit quota low, backing off",
		"remaining", resp.Rate.Remaining, "backoff", g.opts.QuotaBackoff)
	_ = sleepCtx(ctx, g.opts.QuotaBackoff)
}

func commitLogin(c *github.RepositoryCommit) string {
	if login := c.GetAuthor().GetLogin(); login != "" {
		return login
	}
	return "anonymous"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
