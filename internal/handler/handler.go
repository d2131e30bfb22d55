package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nandart/nandart-api/internal/config"
	"github.com/Nandart/nandart-api/internal/domain"
	"github.com/Nandart/nandart-api/internal/service"
)

type Handler struct {
	service service.SubmissionService
	cfg     *config.Config
	log     *zap.Logger
}

func NewHandler(service service.SubmissionService, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		log:     log,
	}
}

// requiredFields of the intake form, in the order they are validated.
var requiredFields = []string{
	"artistName",
	"title",
	"description",
	"style",
	"technique",
	"year",
	"dimensions",
	"materials",
	"locationOfCreation",
	"walletAddress",
}

// Submit handles the multipart intake form. Validation happens before any
// external call; the image upload precedes issue creation.
func (h *Handler) Submit(c *gin.Context) {
	values := make(map[string]string, len(requiredFields))
	for _, field := range requiredFields {
		value := strings.TrimSpace(c.PostForm(field))
		if value == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Todos os campos são obrigatórios"})
			return
		}
		values[field] = value
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Todos os campos são obrigatórios"})
		return
	}

	if file.Size > h.cfg.App.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Imagem demasiado grande"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !h.allowedFormat(ext) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Formato de imagem não suportado"})
		return
	}

	opened, err := file.Open()
	if err != nil {
		h.log.Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Erro ao processar o formulário"})
		return
	}
	defer opened.Close()

	image, err := io.ReadAll(opened)
	if err != nil {
		h.log.Error("Failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Erro ao processar o formulário"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		if ext == ".png" {
			contentType = "image/png"
		} else {
			contentType = "image/jpeg"
		}
	}

	input := service.SubmissionInput{
		Title:              values["title"],
		ArtistName:         values["artistName"],
		Year:               values["year"],
		Style:              values["style"],
		Technique:          values["technique"],
		Dimensions:         values["dimensions"],
		Materials:          values["materials"],
		LocationOfCreation: values["locationOfCreation"],
		Description:        values["description"],
		WalletAddress:      values["walletAddress"],
	}

	record, err := h.service.Submit(c.Request.Context(), input, image, file.Filename, contentType)
	if err != nil {
		h.log.Error("Failed to record submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Erro ao criar submissão"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Submissão recebida com sucesso!",
		"imageUrl": record.ImageURL,
	})
}

// List returns pending submissions, or one record's detail when an id query
// parameter is present.
func (h *Handler) List(c *gin.Context) {
	if raw := c.Query("id"); raw != "" {
		h.getOne(c, raw)
		return
	}

	pendentes, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list submissions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Erro ao obter submissões pendentes."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     len(pendentes),
		"pendentes": pendentes,
	})
}

func (h *Handler) getOne(c *gin.Context, raw string) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Identificador inválido"})
		return
	}

	record, err := h.service.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Submissão não encontrada"})
	case errors.Is(err, domain.ErrMalformedRecord):
		c.JSON(http.StatusNotFound, gin.H{"message": "Submissão não encontrada"})
	case err != nil:
		h.log.Error("Failed to get submission", zap.Int("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Erro ao obter submissão"})
	default:
		c.JSON(http.StatusOK, record)
	}
}

type approveRequest struct {
	ID int `json:"id" form:"id"`
}

// Approve opens the gallery pull request for one submission.
func (h *Handler) Approve(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBind(&req); err != nil || req.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Número da issue não fornecido"})
		return
	}

	prURL, err := h.service.Approve(c.Request.Context(), req.ID)
	switch {
	case errors.Is(err, domain.ErrAlreadyApproved):
		c.JSON(http.StatusConflict, gin.H{"message": "Obra já aprovada"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Submissão não encontrada"})
	case err != nil:
		h.log.Error("Failed to approve submission", zap.Int("id", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Erro ao aprovar a obra"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"message":     "Obra aprovada com sucesso e Pull Request criado!",
			"pullRequest": prURL,
		})
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) allowedFormat(ext string) bool {
	for _, allowed := range h.cfg.App.AllowedFormats {
		if ext == allowed {
			return true
		}
	}
	return false
}
