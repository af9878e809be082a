package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"torchlight-intake/internal/archive"
	"torchlight-intake/internal/form"
	"torchlight-intake/internal/parsing"
	"torchlight-intake/internal/report"
	"torchlight-intake/internal/store"
)

const pingTimeout = 2 * time.Second

type handlers struct {
	cfg    RouterConfig
	logger *zap.Logger
}

func preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *handlers) health(c *gin.Context) {
	database := false
	if records, ok := h.cfg.Records.Get(); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		database = records.Ping(ctx) == nil
	}
	pdfEngine := h.cfg.PDFEngineHealthy != nil && h.cfg.PDFEngineHealthy.Load()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Torchlight API is running",
		"database":  database,
		"pdfEngine": pdfEngine,
	})
}

func (h *handlers) decode(c *gin.Context) (form.Submission, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxBodyBytes)
	body, err := c.GetRawData()
	if err != nil {
		return form.Submission{}, errors.Join(parsing.ErrMalformedRequest, err)
	}
	return parsing.DecodeSubmission(body)
}

func (h *handlers) submit(c *gin.Context) {
	sub, err := h.decode(c)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":      false,
			"error":        "Internal server error",
			"message":      err.Error(),
			"dbSaved":      false,
			"pdfGenerated": false,
			"pdf":          nil,
		})
		return
	}

	out := h.cfg.Service.Submit(c.Request.Context(), sub)

	resp := gin.H{
		"success":      out.Success,
		"message":      out.Message,
		"dbSaved":      out.DBSaved,
		"pdfGenerated": out.PDFGenerated,
		"pdf":          nil,
	}
	if out.PDFGenerated {
		resp["pdf"] = base64.StdEncoding.EncodeToString(out.PDF)
	}
	if out.SubmissionID != "" {
		resp["submissionId"] = out.SubmissionID
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) generatePDF(c *gin.Context) {
	sub, err := h.decode(c)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal server error",
			"message": err.Error(),
		})
		return
	}

	pdf, err := h.cfg.Service.GeneratePDF(c.Request.Context(), sub)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "PDF generation failed",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pdf":     base64.StdEncoding.EncodeToString(pdf),
	})
}

func (h *handlers) records(c *gin.Context) (Records, bool) {
	records, ok := h.cfg.Records.Get()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not configured"})
	}
	return records, ok
}

func (h *handlers) listSubmissions(c *gin.Context) {
	records, ok := h.records(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(store.DefaultListLimit)))
	if err != nil || limit <= 0 {
		limit = store.DefaultListLimit
	}

	list, err := records.ListSubmissions(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submissions"})
		return
	}
	if list == nil {
		list = []store.SubmissionRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"submissions": list, "count": len(list)})
}

// findRecord writes the error response itself when it returns false.
func (h *handlers) findRecord(c *gin.Context) (store.SubmissionRecord, bool) {
	records, ok := h.records(c)
	if !ok {
		return store.SubmissionRecord{}, false
	}
	rec, err := records.FindSubmission(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return store.SubmissionRecord{}, false
	}
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submission"})
		return store.SubmissionRecord{}, false
	}
	return rec, true
}

func (h *handlers) getSubmission(c *gin.Context) {
	rec, ok := h.findRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

// submissionPDF serves the archived document, rendering a fresh one when
// nothing was archived.
func (h *handlers) submissionPDF(c *gin.Context) {
	rec, ok := h.findRecord(c)
	if !ok {
		return
	}

	if arch, ok := h.cfg.Archive.Get(); ok {
		pdf, err := arch.Download(c.Request.Context(), rec.ID)
		if err == nil {
			h.sendPDF(c, rec.ID, pdf)
			return
		}
		if !errors.Is(err, archive.ErrNotArchived) {
			h.logger.Warn("error reading archived document", zap.String("submission_id", rec.ID), zap.Error(err))
		}
	}

	sub, err := rec.Submission()
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submission"})
		return
	}
	pdf, err := h.cfg.Service.GeneratePDF(c.Request.Context(), sub)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PDF generation failed", "message": err.Error()})
		return
	}
	h.sendPDF(c, rec.ID, pdf)
}

func (h *handlers) sendPDF(c *gin.Context, id string, pdf []byte) {
	c.Header("Content-Disposition", `attachment; filename="torchlight-`+id+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *handlers) submissionsWorkbook(c *gin.Context) {
	records, ok := h.records(c)
	if !ok {
		return
	}
	list, err := records.ListSubmissions(c.Request.Context(), store.MaxListLimit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submissions"})
		return
	}
	workbook, err := report.SubmissionsWorkbook(list)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build workbook"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="torchlight-submissions.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}
