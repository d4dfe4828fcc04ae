package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/dlp-inspect/internal/auth"
	"github.com/example/dlp-inspect/internal/inspector"
	"github.com/example/dlp-inspect/internal/usecase"
)

// MaxUploadSize caps multipart image uploads at 10 MiB.
const MaxUploadSize = 10 << 20

// RegisterRoutes wires the HTTP handlers to the Gin router. defaultProject is
// used when an upload does not name a parent project of its own.
func RegisterRoutes(router *gin.Engine, uc *usecase.InspectionUseCase, authMiddleware gin.HandlerFunc, defaultProject string) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := router.Group("/", authMiddleware)
	authed.POST("/inspect", inspectImage(uc, defaultProject))
	authed.GET("/result/:id", getResult(uc))
	authed.GET("/duplicates/:id", getDuplicates(uc))
	authed.GET("/metrics", getMetrics(uc))
}

func inspectImage(uc *usecase.InspectionUseCase, defaultProject string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if file.Size > MaxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload limit"})
			return
		}
		if ct := file.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "only image uploads are supported"})
			return
		}

		infoTypes := parseInfoTypes(c.PostFormArray("info_types"))
		if len(infoTypes) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "info_types is required"})
			return
		}

		includeQuote := true
		if raw := c.PostForm("include_quote"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "include_quote must be a boolean"})
				return
			}
			includeQuote = parsed
		}

		project := c.PostForm("project")
		if project == "" {
			project = defaultProject
		}
		if project == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project is required"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}

		req := &inspector.Request{
			Project:      project,
			InfoTypes:    infoTypes,
			IncludeQuote: includeQuote,
			ImageBytes:   data,
		}

		requestID, result, err := uc.InspectImage(c.Request.Context(), userID, req)
		if err != nil {
			mapError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id":    requestID,
			"finding_count": len(result.Findings),
			"findings":      presentableFindings(result.Findings, includeQuote),
		})
	}
}

func getResult(uc *usecase.InspectionUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
			return
		}

		log, err := uc.GetResult(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			mapError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id":            log.RequestID,
			"user_id":               log.UserID,
			"project":               log.Project,
			"info_types":            log.InfoTypes,
			"include_quote":         log.IncludeQuote,
			"finding_count":         log.FindingCount,
			"findings":              rawFindings(log.Findings),
			"sha1_hash":             log.SHA1Hash,
			"processing_latency_ms": log.ProcessingLatencyMs,
			"created_at":            log.CreatedAt,
		})
	}
}

func getDuplicates(uc *usecase.InspectionUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
			return
		}

		report, err := uc.GetDuplicateReport(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			mapError(c, err)
			return
		}

		duplicates := make([]gin.H, 0, len(report.Duplicates))
		for _, dup := range report.Duplicates {
			duplicates = append(duplicates, gin.H{
				"request_id":    dup.RequestID,
				"finding_count": dup.FindingCount,
				"created_at":    dup.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"request_id":      report.Request.RequestID,
			"sha1_hash":       report.Request.SHA1Hash,
			"duplicate_count": len(report.Duplicates),
			"duplicates":      duplicates,
		})
	}
}

func getMetrics(uc *usecase.InspectionUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := uc.GetMetricsSummary(c.Request.Context())
		if err != nil {
			mapError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// parseInfoTypes flattens repeated and comma separated form values, keeping
// order and duplicates.
func parseInfoTypes(values []string) []string {
	var infoTypes []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				infoTypes = append(infoTypes, part)
			}
		}
	}
	return infoTypes
}

// presentableFindings strips quotes when the caller did not ask for them,
// mirroring the CLI presenter's guard.
func presentableFindings(findings []inspector.Finding, includeQuote bool) []inspector.Finding {
	out := make([]inspector.Finding, len(findings))
	copy(out, findings)
	if !includeQuote {
		for i := range out {
			out[i].Quote = ""
		}
	}
	return out
}

// rawFindings embeds the stored findings JSON without re-decoding it.
func rawFindings(findings string) json.RawMessage {
	if findings == "" {
		return json.RawMessage("[]")
	}
	return json.RawMessage(findings)
}
