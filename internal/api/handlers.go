package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/betmind/internal/models"
	"github.com/yourusername/betmind/internal/repair"
	"github.com/yourusername/betmind/internal/service"
)

const maxTrials = 2_000_000

// AnalysisRequest asks for the analysis of one fixture
type AnalysisRequest struct {
	ParticipantA string  `json:"participant_a"`
	ParticipantB string  `json:"participant_b"`
	League       string  `json:"league"`
	Sport        string  `json:"sport"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	QuickOdds    float64 `json:"quick_odds"`
	Refresh      bool    `json:"refresh"`
}

// SimulateRequest runs the simulator on explicit ratings. Ratings is loosely
// typed: missing or unreadable components fall back to the neutral rating.
type SimulateRequest struct {
	Ratings  any    `json:"ratings"`
	Category string `json:"category"`
	Trials   int    `json:"trials" binding:"gte=0"`
}

type fixturesResponse struct {
	Fixtures []models.FixtureRef `json:"fixtures"`
	Count    int                 `json:"count"`
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

func (s *Server) listFixtures(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.DefaultQuery("category", models.CategoryAll)))
	if category != models.CategoryAll {
		parsed := models.ParseCategory(category)
		if string(parsed) != category {
			c.JSON(http.StatusBadRequest, errorBody("unknown category: "+category))
			return
		}
	}
	refresh, _ := strconv.ParseBool(c.Query("refresh"))

	fixtures, err := s.fixtures.ListFixtures(c.Request.Context(), category, refresh)
	if err != nil {
		if errors.Is(err, service.ErrFixturesUnavailable) {
			c.JSON(http.StatusServiceUnavailable, errorBody("fixtures unavailable, try again later"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorBody("failed to list fixtures"))
		return
	}
	c.JSON(http.StatusOK, fixturesResponse{Fixtures: fixtures, Count: len(fixtures)})
}

func (s *Server) createAnalysis(c *gin.Context) {
	var req AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if strings.TrimSpace(req.ParticipantA) == "" && strings.TrimSpace(req.ParticipantB) == "" {
		c.JSON(http.StatusBadRequest, errorBody("participants are required"))
		return
	}

	fixture := service.NewFixture(req.ParticipantA, req.ParticipantB, req.League, req.Sport,
		req.Date, req.Time, req.QuickOdds, false)
	artifact, err := s.analyzer.GetAnalysis(c.Request.Context(), fixture, req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrAnalysisUnavailable) {
			c.JSON(http.StatusServiceUnavailable, errorBody("analysis unavailable, try again later"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorBody("analysis failed"))
		return
	}
	c.JSON(http.StatusOK, artifact)
}

func (s *Server) getAnalysis(c *gin.Context) {
	artifact, ok := s.analyzer.CachedAnalysis(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorBody("analysis not found"))
		return
	}
	c.JSON(http.StatusOK, artifact)
}

func (s *Server) simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if req.Trials > maxTrials {
		c.JSON(http.StatusBadRequest, errorBody("too many trials"))
		return
	}

	ratings, _ := repair.Ratings(req.Ratings)
	category := models.ParseCategory(req.Category)
	out, err := s.simulator.SimulateContext(c.Request.Context(), ratings, category, req.Trials)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, errorBody("simulation canceled"))
		return
	}
	c.JSON(http.StatusOK, out)
}
