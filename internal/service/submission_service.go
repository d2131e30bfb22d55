package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nandart/nandart-api/internal/config"
	"github.com/Nandart/nandart-api/internal/domain"
	"github.com/Nandart/nandart-api/internal/markup"
	"github.com/Nandart/nandart-api/internal/repository"
	"github.com/Nandart/nandart-api/pkg/utils"
)

// Labels applied to the tracked issues. The pending pair marks a submission
// awaiting review; approval replaces it with the approved pair.
const (
	LabelSubmission = "submissão"
	LabelPending    = "pendente de revisão"
	LabelWork       = "obra"
	LabelApproved   = "aprovada"
)

// SubmissionInput carries the intake form fields. All of them are required;
// the handler validates before calling Submit.
type SubmissionInput struct {
	Title              string
	ArtistName         string
	Year               string
	Style              string
	Technique          string
	Dimensions         string
	Materials          string
	LocationOfCreation string
	Description        string
	WalletAddress      string
}

type SubmissionService interface {
	Submit(ctx context.Context, in SubmissionInput, image []byte, filename, contentType string) (*domain.Record, error)
	ListPending(ctx context.Context) ([]domain.Summary, error)
	Get(ctx context.Context, id int) (*domain.Record, error)
	Approve(ctx context.Context, id int) (string, error)
}

type submissionService struct {
	media     repository.MediaRepository
	store     repository.SubmissionStore
	publisher repository.ContentPublisher
	cfg       *config.Config
	log       *zap.Logger
	now       func() time.Time
}

func NewSubmissionService(
	media repository.MediaRepository,
	store repository.SubmissionStore,
	publisher repository.ContentPublisher,
	cfg *config.Config,
	log *zap.Logger,
) SubmissionService {
	return &submissionService{
		media:     media,
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Submit uploads the image, serializes the record into an issue body and
// creates the tracked issue. The upload comes first: no issue is ever created
// without a durable image URL.
func (s *submissionService) Submit(ctx context.Context, in SubmissionInput, image []byte, filename, contentType string) (*domain.Record, error) {
	key := "obras/" + uuid.New().String() + filepath.Ext(filename)

	imageURL, err := s.media.Upload(ctx, key, bytes.NewReader(image), int64(len(image)), contentType)
	if err != nil {
		return nil, err
	}

	record := &domain.Record{
		Title:              in.Title,
		ArtistName:         in.ArtistName,
		Year:               in.Year,
		Style:              in.Style,
		Technique:          in.Technique,
		Dimensions:         in.Dimensions,
		Materials:          in.Materials,
		LocationOfCreation: in.LocationOfCreation,
		Description:        in.Description,
		WalletAddress:      in.WalletAddress,
		ImageURL:           imageURL,
		Status:             domain.StatusPending,
	}

	issue, err := s.store.CreateIssue(ctx,
		markup.IssueTitle(record),
		markup.Serialize(record),
		[]string{LabelSubmission, LabelPending},
	)
	if err != nil {
		return nil, err
	}

	record.ID = issue.Number
	record.URL = issue.URL
	record.CreatedAt = issue.CreatedAt

	s.log.Info("Submission recorded",
		zap.Int("id", record.ID),
		zap.String("title", record.Title),
		zap.String("artist", record.ArtistName))

	return record, nil
}

// ListPending returns display-ready summaries of open, unapproved records.
// Records whose body cannot be decoded, or that lack title, artist or image,
// are logged and silently excluded.
func (s *submissionService) ListPending(ctx context.Context) ([]domain.Summary, error) {
	issues, err := s.store.ListIssues(ctx, []string{LabelSubmission, LabelPending}, true)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.Summary, 0, len(issues))
	for _, issue := range issues {
		record, err := s.recordFromIssue(issue)
		if err != nil {
			s.log.Warn("Skipping malformed submission",
				zap.Int("id", issue.Number),
				zap.Error(err))
			continue
		}
		if !record.Displayable() {
			s.log.Warn("Skipping incomplete submission", zap.Int("id", issue.Number))
			continue
		}
		summaries = append(summaries, record.Summary())
	}

	return summaries, nil
}

func (s *submissionService) Get(ctx context.Context, id int) (*domain.Record, error) {
	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.recordFromIssue(issue)
}

// Approve publishes the record into the gallery repository: resolve base
// branch head, create a branch, commit the generated file, open a pull
// request, then update the issue labels. The steps run strictly in this
// order; a branch orphaned by a mid-sequence failure is left in place, since
// the source issue still holds every field. Label update is best-effort: the
// pull request is the durable artifact of approval.
func (s *submissionService) Approve(ctx context.Context, id int) (string, error) {
	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		return "", err
	}

	if issue.HasLabel(LabelApproved) {
		return "", domain.ErrAlreadyApproved
	}

	record, err := s.recordFromIssue(issue)
	if err != nil {
		return "", err
	}

	// Issue number plus timestamp keeps concurrent approvals of identically
	// titled works from colliding on branch or path.
	slug := utils.Slugify(record.ArtistName, record.Title)
	token := fmt.Sprintf("%d-%d", id, s.now().UnixNano())
	branch := fmt.Sprintf("add-%s-%s", slug, token)

	ext := s.cfg.Content.Format
	filePath := path.Join(s.cfg.Content.Path, fmt.Sprintf("%s-%s.%s", slug, token, ext))

	content, err := renderContent(record, s.cfg.Content.Format)
	if err != nil {
		return "", fmt.Errorf("render content for %d: %w", id, err)
	}

	baseSHA, err := s.publisher.GetBranchHead(ctx, s.cfg.Content.Branch)
	if err != nil {
		return "", err
	}

	if err := s.publisher.CreateBranch(ctx, branch, baseSHA); err != nil {
		return "", err
	}

	message := "Adicionar nova obra: " + record.Title
	if err := s.publisher.CreateFile(ctx, branch, filePath, message, content); err != nil {
		return "", err
	}

	prTitle := "🎉 Aprovação de obra: " + record.Title
	prBody := fmt.Sprintf("A obra **%s** de %s foi aprovada para publicação na galeria.",
		record.Title, record.ArtistName)

	prURL, err := s.publisher.CreatePullRequest(ctx, branch, s.cfg.Content.Branch, prTitle, prBody)
	if err != nil {
		return "", err
	}

	if err := s.store.UpdateLabels(ctx, id, []string{LabelWork, LabelApproved}); err != nil {
		s.log.Warn("Pull request created but label update failed",
			zap.Int("id", id),
			zap.String("pr", prURL),
			zap.Error(err))
	}

	s.log.Info("Submission approved",
		zap.Int("id", id),
		zap.String("path", filePath),
		zap.String("pr", prURL))

	return prURL, nil
}

func (s *submissionService) recordFromIssue(issue *repository.IssueRecord) (*domain.Record, error) {
	record, err := markup.Deserialize(issue.Body)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedRecord) {
			return nil, fmt.Errorf("record %d: %w", issue.Number, err)
		}
		return nil, err
	}

	record.ID = issue.Number
	record.URL = issue.URL
	record.CreatedAt = issue.CreatedAt
	if issue.HasLabel(LabelApproved) {
		record.Status = domain.StatusApproved
	}

	return record, nil
}

// contentFile is the shape of the generated gallery file, matching the
// public site's expectations.
type contentFile struct {
	Titulo    string `json:"titulo"`
	Artista   string `json:"artista"`
	Ano       string `json:"ano"`
	Estilo    string `json:"estilo"`
	Tecnica   string `json:"tecnica"`
	Dimensoes string `json:"dimensoes"`
	Materiais string `json:"materiais"`
	Local     string `json:"local"`
	Descricao string `json:"descricao"`
	Carteira  string `json:"carteira"`
	Imagem    string `json:"imagem"`
}

func renderContent(r *domain.Record, format string) ([]byte, error) {
	file := contentFile{
		Titulo:    r.Title,
		Artista:   r.ArtistName,
		Ano:       r.Year,
		Estilo:    r.Style,
		Tecnica:   r.Technique,
		Dimensoes: r.Dimensions,
		Materiais: r.Materials,
		Local:     r.LocationOfCreation,
		Descricao: r.Description,
		Carteira:  r.WalletAddress,
		Imagem:    r.ImageURL,
	}

	switch format {
	case "json":
		return json.MarshalIndent(file, "", "  ")
	case "md":
		return renderMarkdown(file), nil
	default:
		return nil, fmt.Errorf("unsupported content format %q", format)
	}
}

// renderMarkdown emits front-matter Markdown: every scalar field in the
// front matter, the description as the document body.
func renderMarkdown(f contentFile) []byte {
	var b strings.Builder
	b.WriteString("---\n")
	writeFrontMatter(&b, "titulo", f.Titulo)
	writeFrontMatter(&b, "artista", f.Artista)
	writeFrontMatter(&b, "ano", f.Ano)
	writeFrontMatter(&b, "estilo", f.Estilo)
	writeFrontMatter(&b, "tecnica", f.Tecnica)
	writeFrontMatter(&b, "dimensoes", f.Dimensoes)
	writeFrontMatter(&b, "materiais", f.Materiais)
	writeFrontMatter(&b, "local", f.Local)
	writeFrontMatter(&b, "carteira", f.Carteira)
	writeFrontMatter(&b, "imagem", f.Imagem)
	b.WriteString("---\n")
	if f.Descricao != "" {
		b.WriteString("\n" + f.Descricao + "\n")
	}
	return []byte(b.String())
}

func writeFrontMatter(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %q\n", key, value)
}
