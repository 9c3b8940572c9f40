package api

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ubv-transcribe/config"
	"ubv-transcribe/database"

	"github.com/gin-gonic/gin"
)

// Server exposes read-only run history and merged transcripts over HTTP.
type Server struct {
	config config.Config
	db     database.Database
}

// NewServer creates the status API server.
func NewServer(cfg config.Config, db database.Database) *Server {
	return &Server{
		config: cfg,
		db:     db,
	}
}

// Start runs the HTTP server. It blocks until the server exits.
func (s *Server) Start() error {
	r := gin.Default()
	s.setupCORS(r)
	s.setupRoutes(r)
	portAddr := ":" + s.config.ServerPort
	log.Printf("[api] Starting status server on %s", portAddr)
	return r.Run(portAddr)
}

func (s *Server) setupCORS(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})
}

func (s *Server) setupRoutes(r *gin.Engine) {
	// Merged daily documents, served as-is
	r.Static("/transcripts", s.config.TranscriptsDir)

	api := r.Group("/api")
	{
		api.GET("/runs", s.listRuns)
		api.GET("/runs/:id", s.getRun)
		api.GET("/stats", s.getStats)
		api.GET("/transcripts", s.listTranscripts)
		api.GET("/health", s.getHealth)
	}
}

func (s *Server) listRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	runs, err := s.db.ListRuns(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	id := c.Param("id")

	run, err := s.db.GetRun(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	chunks, err := s.db.ListChunksByRun(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"run": run, "chunks": chunks})
}

func (s *Server) getStats(c *gin.Context) {
	counts, err := s.db.GetChunkCounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunk_counts": counts})
}

type transcriptInfo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func (s *Server) listTranscripts(c *gin.Context) {
	var transcripts []transcriptInfo

	err := filepath.Walk(s.config.TranscriptsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		rel, err := filepath.Rel(s.config.TranscriptsDir, path)
		if err != nil {
			return err
		}
		transcripts = append(transcripts, transcriptInfo{
			Name:     info.Name(),
			Path:     "/transcripts/" + filepath.ToSlash(rel),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcripts": transcripts})
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}
