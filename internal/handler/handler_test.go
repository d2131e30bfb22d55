package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nandart/nandart-api/internal/config"
	"github.com/Nandart/nandart-api/internal/domain"
	"github.com/Nandart/nandart-api/internal/service"
)

type stubService struct {
	submitRecord *domain.Record
	submitErr    error
	summaries    []domain.Summary
	listErr      error
	record       *domain.Record
	getErr       error
	prURL        string
	approveErr   error
	approvedIDs  []int
}

func (s *stubService) Submit(_ context.Context, _ service.SubmissionInput, _ []byte, _, _ string) (*domain.Record, error) {
	return s.submitRecord, s.submitErr
}

func (s *stubService) ListPending(_ context.Context) ([]domain.Summary, error) {
	return s.summaries, s.listErr
}

func (s *stubService) Get(_ context.Context, _ int) (*domain.Record, error) {
	return s.record, s.getErr
}

func (s *stubService) Approve(_ context.Context, id int) (string, error) {
	if s.approveErr != nil {
		return "", s.approveErr
	}
	s.approvedIDs = append(s.approvedIDs, id)
	return s.prURL, nil
}

func newTestRouter(svc service.SubmissionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		App: config.AppConfig{
			MaxUploadSize:  10 * 1024 * 1024,
			AllowedFormats: []string{".jpg", ".jpeg", ".png"},
		},
	}
	h := NewHandler(svc, cfg, zap.NewNop())

	router := gin.New()
	router.POST("/api/submissoes", h.Submit)
	router.GET("/api/submissoes", h.List)
	router.POST("/api/aprovar", h.Approve)
	router.GET("/health", h.HealthCheck)
	return router
}

func submissionForm(t *testing.T, omit string) (*bytes.Buffer, string) {
	t.Helper()

	fields := map[string]string{
		"artistName":         "Ana Lima",
		"title":              "Sunset",
		"description":        "Um pôr do sol sobre o Tejo.",
		"style":              "Expressionismo",
		"technique":          "Óleo sobre tela",
		"year":               "2021",
		"dimensions":         "70x50 cm",
		"materials":          "Tela, óleo",
		"locationOfCreation": "Lisboa",
		"walletAddress":      "0xAbC123",
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		if name == omit {
			continue
		}
		require.NoError(t, writer.WriteField(name, value))
	}
	if omit != "image" {
		part, err := writer.CreateFormFile("image", "obra.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestSubmitSuccess(t *testing.T) {
	svc := &stubService{submitRecord: &domain.Record{
		ID:       7,
		Title:    "Sunset",
		ImageURL: "https://media.example.com/obras/x.jpg",
	}}
	router := newTestRouter(svc)

	body, contentType := submissionForm(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/submissoes", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Submissão recebida com sucesso!", resp["message"])
	assert.Equal(t, "https://media.example.com/obras/x.jpg", resp["imageUrl"])
}

func TestSubmitMissingFieldRejectedBeforeAnyCall(t *testing.T) {
	for _, missing := range []string{"title", "artistName", "walletAddress", "image"} {
		t.Run(missing, func(t *testing.T) {
			svc := &stubService{submitErr: errors.New("must not be called")}
			router := newTestRouter(svc)

			body, contentType := submissionForm(t, missing)
			req := httptest.NewRequest(http.MethodPost, "/api/submissoes", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Todos os campos são obrigatórios")
		})
	}
}

func TestSubmitRejectsUnsupportedFormat(t *testing.T) {
	router := newTestRouter(&stubService{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range requiredFields {
		require.NoError(t, writer.WriteField(name, "x"))
	}
	part, err := writer.CreateFormFile("image", "obra.gif")
	require.NoError(t, err)
	_, err = part.Write([]byte("gif"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/submissoes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Formato de imagem não suportado")
}

func TestSubmitStoreFailureIsGeneric500(t *testing.T) {
	svc := &stubService{submitErr: errors.New("token leaked: ghp_secret")}
	router := newTestRouter(svc)

	body, contentType := submissionForm(t, "")
	req := httptest.NewRequest(http.MethodPost, "/api/submissoes", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "ghp_secret")
	assert.Contains(t, w.Body.String(), "Erro ao criar submissão")
}

func TestListPending(t *testing.T) {
	svc := &stubService{summaries: []domain.Summary{
		{
			ID:         3,
			Title:      "Sunset",
			ArtistName: "Ana Lima",
			ImageURL:   "https://media.example.com/obras/x.jpg",
			URL:        "https://github.com/test/submissoes/issues/3",
		},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/submissoes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total     int `json:"total"`
		Pendentes []struct {
			ID          int    `json:"id"`
			Titulo      string `json:"titulo"`
			NomeArtista string `json:"nomeArtista"`
			Imagem      string `json:"imagem"`
			URL         string `json:"url"`
		} `json:"pendentes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Pendentes, 1)
	assert.Equal(t, "Sunset", resp.Pendentes[0].Titulo)
	assert.Equal(t, "Ana Lima", resp.Pendentes[0].NomeArtista)
	assert.Equal(t, "https://media.example.com/obras/x.jpg", resp.Pendentes[0].Imagem)
}

func TestListSingleRecordDetail(t *testing.T) {
	svc := &stubService{record: &domain.Record{ID: 3, Title: "Sunset", ArtistName: "Ana Lima"}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/submissoes?id=3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"titulo":"Sunset"`)
}

func TestListSingleRecordNotFound(t *testing.T) {
	svc := &stubService{getErr: domain.ErrNotFound}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/submissoes?id=99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApproveSuccess(t *testing.T) {
	svc := &stubService{prURL: "https://github.com/test/galeria/pull/1"}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/aprovar", strings.NewReader(`{"id": 3}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Obra aprovada com sucesso e Pull Request criado!")
	assert.Equal(t, []int{3}, svc.approvedIDs)
}

func TestApproveMissingID(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/aprovar", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Número da issue não fornecido")
}

func TestApproveAlreadyApproved(t *testing.T) {
	svc := &stubService{approveErr: domain.ErrAlreadyApproved}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/aprovar", strings.NewReader(`{"id": 3}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Obra já aprovada")
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OK")
}
