package server

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"mailblast/internal/intake"
	"mailblast/internal/logger"
	"mailblast/internal/service"
)

const sessionCookie = "mailblast_session"

func (s *Server) routes(ctx context.Context) http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), withLogger(ctx))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/login", s.handleLogin)

	api := r.Group("/api", s.requireSession)
	api.POST("/compose", s.handleCompose)
	api.POST("/jobs", s.handleCreateJob)
	api.GET("/jobs/:id", s.handleJob)

	return r
}

// withLogger carries the process logger into every request context so
// handlers and the service log through logger.FromContext.
func withLogger(ctx context.Context) gin.HandlerFunc {
	log := logger.FromContext(ctx)

	return func(c *gin.Context) {
		reqCtx := logger.WithLogger(c.Request.Context(), log)
		c.Request = c.Request.WithContext(reqCtx)
		c.Next()
	}
}

func (s *Server) requireSession(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || !s.sessions.Valid(token) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	c.Next()
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.Password)) == 1

	if !userOK || !passOK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token := s.sessions.Issue()
	c.SetCookie(sessionCookie, token, int(sessionTTL.Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCompose(c *gin.Context) {
	subject := c.PostForm("subject")
	purpose := c.PostForm("purpose")
	tone := c.PostForm("tone")

	if purpose == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "purpose is required"})
		return
	}

	file, _, err := c.Request.FormFile("csv")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv file is required"})
		return
	}
	defer file.Close()

	recipients, err := intake.ReadRecipients(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.WithMessage(err, "bad csv").Error()})
		return
	}

	body, err := s.service.Compose(c.Request.Context(), purpose, tone)
	if err != nil {
		logger.FromContext(c.Request.Context()).WithError(err).Error("compose failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to draft email body"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subject":    subject,
		"body":       body,
		"recipients": recipients,
		"count":      len(recipients),
	})
}

type recipientPayload struct {
	Address string            `json:"address" binding:"required"`
	Fields  map[string]string `json:"fields"`
}

type createJobRequest struct {
	Subject       string             `json:"subject" binding:"required"`
	Body          string             `json:"body" binding:"required"`
	Recipients    []recipientPayload `json:"recipients" binding:"required,min=1,dive"`
	RatePerSecond float64            `json:"rate_per_second"`
}

func (s *Server) handleCreateJob(c *gin.Context) {
	var req createJobRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rate := req.RatePerSecond
	if rate == 0 {
		rate = s.DefaultRate
	}

	recipients := make([]service.Recipient, len(req.Recipients))
	for i, r := range req.Recipients {
		recipients[i] = service.Recipient{Address: r.Address, Fields: r.Fields}
	}

	job := service.NewSendJob(service.EmailAddress{
		Name:    s.FromName,
		Address: s.FromAddress,
	}, service.Template{
		Subject: req.Subject,
		Body:    req.Body,
	}, recipients, rate)

	if err := s.service.EnqueueJob(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":         job.ID,
		"status":     job.Status,
		"recipients": len(job.Recipients),
	})
}

func (s *Server) handleJob(c *gin.Context) {
	job, err := s.service.Job(c.Request.Context(), c.Param("id"))
	if errors.Cause(err) == service.ErrJobNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		logger.FromContext(c.Request.Context()).WithError(err).Error("job lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job":     job,
		"summary": job.Summary(),
	})
}
