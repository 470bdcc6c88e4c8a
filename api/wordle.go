// Package handler serves the solver over HTTP.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bent101/wordle-search/hint"
	"github.com/bent101/wordle-search/reducer"
	"github.com/bent101/wordle-search/search"
)

// maxListed caps the candidate words echoed back in a response.
const maxListed = 20

type Server struct {
	inv *reducer.Inventory
	cfg search.Config
	log *slog.Logger
}

func New(inv *reducer.Inventory, cfg search.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{inv: inv, cfg: cfg, log: log}
}

// Router returns the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)

	v1 := r.Group("/v1")
	v1.GET("/health", s.health)
	v1.POST("/score", s.score)
	v1.POST("/suggest", s.suggest)
	v1.POST("/partition", s.partition)
	return r
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Info("request", "method", c.Request.Method, "path", c.FullPath(),
		"status", c.Writer.Status(), "duration", time.Since(start))
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Turn struct {
	Guess    string `json:"guess" binding:"required"`
	Feedback string `json:"feedback" binding:"required"`
}

type ScoreRequest struct {
	Guess  string `json:"guess" binding:"required"`
	Answer string `json:"answer" binding:"required"`
}

type ScoreResponse struct {
	Tiles   string   `json:"tiles"`
	Colors  []string `json:"colors"`
	Digits  []int    `json:"digits"`
	Pattern int      `json:"pattern"`
}

type SuggestRequest struct {
	History []Turn `json:"history" binding:"dive"`
}

type SuggestResponse struct {
	Guess      string   `json:"guess"`
	Score      float64  `json:"score"`
	Trivial    bool     `json:"trivial"`
	Candidates int      `json:"candidates"`
	Words      []string `json:"words"`
}

type PartitionRequest struct {
	Guess   string `json:"guess" binding:"required"`
	History []Turn `json:"history" binding:"dive"`
}

type PartitionResponse struct {
	Buckets          int     `json:"buckets"`
	MaxNumCandidates int     `json:"max_num_candidates"`
	AvgNumCandidates float64 `json:"avg_num_candidates"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "words": s.inv.Len()})
}

func (s *Server) score(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}

	guess, err := hint.ParseWord(req.Guess)
	if err != nil {
		s.fail(c, err)
		return
	}
	answer, err := hint.ParseWord(req.Answer)
	if err != nil {
		s.fail(c, err)
		return
	}

	colors := hint.Score(guess, answer)
	digits := hint.Encode(guess, colors)
	resp := ScoreResponse{Tiles: colors.String(), Pattern: int(digits.Pattern())}
	for i := range hint.WordLength {
		resp.Colors = append(resp.Colors, colors[i].String())
		resp.Digits = append(resp.Digits, int(digits[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}

	e, err := s.replay(req.History)
	if err != nil {
		s.fail(c, err)
		return
	}
	d, err := e.BestGuess()
	if err != nil {
		s.fail(c, err)
		return
	}

	words := e.Words()
	c.JSON(http.StatusOK, SuggestResponse{
		Guess:      s.inv.Word(d.Guess).String(),
		Score:      d.Score,
		Trivial:    d.Trivial,
		Candidates: len(words),
		Words:      words[:min(len(words), maxListed)],
	})
}

// partition reports how well a guess splits the current candidates: the
// number of distinct outcomes, the worst case and the expected number of
// candidates left.
func (s *Server) partition(c *gin.Context) {
	var req PartitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}

	guess, err := s.inv.Lookup(req.Guess)
	if err != nil {
		s.fail(c, err)
		return
	}
	e, err := s.replay(req.History)
	if err != nil {
		s.fail(c, err)
		return
	}

	buckets := e.Partition(guess)

	c.JSON(http.StatusOK, PartitionResponse{
		Buckets:          len(buckets),
		MaxNumCandidates: MaxNumCandidates(buckets),
		AvgNumCandidates: AvgNumCandidates(buckets),
	})
}

// replay builds a fresh engine and applies history to it.
func (s *Server) replay(history []Turn) (*search.Engine, error) {
	e, err := search.New(s.inv, s.cfg, s.log)
	if err != nil {
		return nil, err
	}
	for _, t := range history {
		w, err := hint.ParseWord(t.Guess)
		if err != nil {
			return nil, err
		}
		colors, err := hint.ParseColors(t.Feedback)
		if err != nil {
			return nil, err
		}
		if err := e.Apply(w, hint.Encode(w, colors)); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, hint.ErrMalformedWord), errors.Is(err, hint.ErrMalformedFeedback):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, reducer.ErrIntegrity), errors.Is(err, search.ErrExhausted):
		status = http.StatusConflict
	default:
		s.log.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// MaxNumCandidates is the size of the largest bucket.
func MaxNumCandidates(buckets []reducer.Bucket) int {
	ret := 0
	for _, b := range buckets {
		ret = max(ret, b.Count)
	}
	return ret
}

// AvgNumCandidates is the expected bucket size when every candidate is
// equally likely to be the answer.
func AvgNumCandidates(buckets []reducer.Bucket) float64 {
	tot, n := 0, 0
	for _, b := range buckets {
		tot += b.Count * b.Count
		n += b.Count
	}
	if n == 0 {
		return 0
	}
	return float64(tot) / float64(n)
}
