package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"

	"github.com/Nandart/nandart-api/internal/config"
	"github.com/Nandart/nandart-api/internal/domain"
)

// IssueRecord is the raw stored form of a submission as the tracker returns
// it. The markup codec turns its body back into a domain.Record.
type IssueRecord struct {
	Number    int
	Title     string
	Body      string
	Labels    []string
	URL       string
	CreatedAt time.Time
}

// HasLabel reports whether the stored record carries the given label.
func (ir *IssueRecord) HasLabel(name string) bool {
	for _, l := range ir.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// SubmissionStore is the issue-tracker-backed persistence for submissions.
// No retries happen at this layer.
type SubmissionStore interface {
	CreateIssue(ctx context.Context, title, body string, labels []string) (*IssueRecord, error)
	ListIssues(ctx context.Context, labels []string, openOnly bool) ([]*IssueRecord, error)
	GetIssue(ctx context.Context, number int) (*IssueRecord, error)
	UpdateLabels(ctx context.Context, number int, labels []string) error
	CloseIssue(ctx context.Context, number int) error
}

// ContentPublisher performs the branch/file/pull-request sequence against the
// public gallery repository.
type ContentPublisher interface {
	GetBranchHead(ctx context.Context, branch string) (string, error)
	CreateBranch(ctx context.Context, name, sha string) error
	CreateFile(ctx context.Context, branch, path, message string, content []byte) error
	CreatePullRequest(ctx context.Context, head, base, title, body string) (string, error)
}

type githubRepository struct {
	client *github.Client
	gh     *config.GitHubConfig
	ct     *config.ContentConfig
	log    *zap.Logger
}

// NewGitHubRepository builds one authenticated client and exposes it under
// both roles: submission store (issues) and content publisher (git data +
// pull requests).
func NewGitHubRepository(gh *config.GitHubConfig, ct *config.ContentConfig, log *zap.Logger) (SubmissionStore, ContentPublisher) {
	repo := &githubRepository{
		client: github.NewClient(nil).WithAuthToken(gh.Token),
		gh:     gh,
		ct:     ct,
		log:    log,
	}
	return repo, repo
}

func (r *githubRepository) CreateIssue(ctx context.Context, title, body string, labels []string) (*IssueRecord, error) {
	issue, _, err := r.client.Issues.Create(ctx, r.gh.SubmissionsOwner, r.gh.SubmissionsRepo, &github.IssueRequest{
		Title:  github.String(title),
		Body:   github.String(body),
		Labels: &labels,
	})
	if err != nil {
		r.log.Error("Failed to create issue", zap.String("title", title), zap.Error(err))
		return nil, fmt.Errorf("create issue: %w", err)
	}

	r.log.Info("Issue created",
		zap.Int("number", issue.GetNumber()),
		zap.String("url", issue.GetHTMLURL()))

	return toIssueRecord(issue), nil
}

func (r *githubRepository) ListIssues(ctx context.Context, labels []string, openOnly bool) ([]*IssueRecord, error) {
	state := "all"
	if openOnly {
		state = "open"
	}

	var records []*IssueRecord
	opts := &github.IssueListByRepoOptions{
		State:       state,
		Labels:      labels,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		issues, resp, err := r.client.Issues.ListByRepo(ctx, r.gh.SubmissionsOwner, r.gh.SubmissionsRepo, opts)
		if err != nil {
			r.log.Error("Failed to list issues", zap.Error(err))
			return nil, fmt.Errorf("list issues: %w", err)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			records = append(records, toIssueRecord(issue))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return records, nil
}

func (r *githubRepository) GetIssue(ctx context.Context, number int) (*IssueRecord, error) {
	issue, resp, err := r.client.Issues.Get(ctx, r.gh.SubmissionsOwner, r.gh.SubmissionsRepo, number)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return nil, domain.ErrNotFound
		}
		r.log.Error("Failed to get issue", zap.Int("number", number), zap.Error(err))
		return nil, fmt.Errorf("get issue %d: %w", number, err)
	}
	return toIssueRecord(issue), nil
}

func (r *githubRepository) UpdateLabels(ctx context.Context, number int, labels []string) error {
	_, _, err := r.client.Issues.Edit(ctx, r.gh.SubmissionsOwner, r.gh.SubmissionsRepo, number, &github.IssueRequest{
		Labels: &labels,
	})
	if err != nil {
		r.log.Error("Failed to update labels", zap.Int("number", number), zap.Error(err))
		return fmt.Errorf("update labels on issue %d: %w", number, err)
	}
	return nil
}

func (r *githubRepository) CloseIssue(ctx context.Context, number int) error {
	_, _, err := r.client.Issues.Edit(ctx, r.gh.SubmissionsOwner, r.gh.SubmissionsRepo, number, &github.IssueRequest{
		State: github.String("closed"),
	})
	if err != nil {
		r.log.Error("Failed to close issue", zap.Int("number", number), zap.Error(err))
		return fmt.Errorf("close issue %d: %w", number, err)
	}
	return nil
}

func (r *githubRepository) GetBranchHead(ctx context.Context, branch string) (string, error) {
	ref, _, err := r.client.Git.GetRef(ctx, r.ct.Owner, r.ct.Repo, "heads/"+branch)
	if err != nil {
		r.log.Error("Failed to resolve branch head", zap.String("branch", branch), zap.Error(err))
		return "", fmt.Errorf("resolve head of %s: %w", branch, err)
	}
	return ref.GetObject().GetSHA(), nil
}

func (r *githubRepository) CreateBranch(ctx context.Context, name, sha string) error {
	_, _, err := r.client.Git.CreateRef(ctx, r.ct.Owner, r.ct.Repo, &github.Reference{
		Ref:    github.String("refs/heads/" + name),
		Object: &github.GitObject{SHA: github.String(sha)},
	})
	if err != nil {
		r.log.Error("Failed to create branch", zap.String("branch", name), zap.Error(err))
		return fmt.Errorf("create branch %s: %w", name, err)
	}
	return nil
}

func (r *githubRepository) CreateFile(ctx context.Context, branch, path, message string, content []byte) error {
	_, _, err := r.client.Repositories.CreateFile(ctx, r.ct.Owner, r.ct.Repo, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(branch),
	})
	if err != nil {
		r.log.Error("Failed to create file",
			zap.String("path", path),
			zap.String("branch", branch),
			zap.Error(err))
		return fmt.Errorf("create file %s: %w", path, err)
	}
	return nil
}

func (r *githubRepository) CreatePullRequest(ctx context.Context, head, base, title, body string) (string, error) {
	pr, _, err := r.client.PullRequests.Create(ctx, r.ct.Owner, r.ct.Repo, &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(head),
		Base:  github.String(base),
		Body:  github.String(body),
	})
	if err != nil {
		r.log.Error("Failed to create pull request", zap.String("head", head), zap.Error(err))
		return "", fmt.Errorf("create pull request from %s: %w", head, err)
	}

	r.log.Info("Pull request created", zap.String("url", pr.GetHTMLURL()))

	return pr.GetHTMLURL(), nil
}

func toIssueRecord(issue *github.Issue) *IssueRecord {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}
	return &IssueRecord{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		Labels:    labels,
		URL:       issue.GetHTMLURL(),
		CreatedAt: issue.GetCreatedAt().Time,
	}
}
