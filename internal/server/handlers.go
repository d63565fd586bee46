package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studyhall/internal/content"
	"github.com/abhisek/studyhall/internal/progression"
	"github.com/abhisek/studyhall/internal/review"
	"github.com/abhisek/studyhall/internal/spacedrep"
)

type handlers struct {
	prog    Progression
	reviews Reviews
	now     func() time.Time
}

func (h *handlers) health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *handlers) badges(c *gin.Context) {
	defs, err := h.prog.Catalog().Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"badges": defs})
}

func (h *handlers) progress(c *gin.Context) {
	sum, err := h.prog.Summary(c.Request.Context(), c.Param("user"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, sum)
}

type activityRequest struct {
	At *time.Time `json:"at"`
}

func (h *handlers) activity(c *gin.Context) {
	var req activityRequest
	if !bindOptional(c, &req) {
		return
	}
	res, err := h.prog.RecordActivity(c.Request.Context(), c.Param("user"), h.at(req.At))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, res)
}

type awardRequest struct {
	Amount      *int   `json:"amount" binding:"required,min=-1000000,max=1000000"`
	Source      string `json:"source" binding:"required"`
	Description string `json:"description"`
}

func (h *handlers) award(c *gin.Context) {
	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	src, err := progression.ParseSource(req.Source)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if src.EngineOnly() {
		respondError(c, http.StatusBadRequest, "invalid_request",
			&progression.ValidationError{Field: "source", Reason: string(src) + " XP is granted by the server"})
		return
	}
	res, err := h.prog.Award(c.Request.Context(), c.Param("user"), *req.Amount, src, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, res)
}

// reviewRequest carries either a quality grade or a timed answer.
type reviewRequest struct {
	GroupKey   string     `json:"group_key" binding:"required"`
	ItemID     string     `json:"item_id" binding:"required"`
	Quality    *int       `json:"quality"`
	ResponseMs *int64     `json:"response_ms"`
	Correct    *bool      `json:"correct"`
	At         *time.Time `json:"at"`
}

func (h *handlers) submitReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	var (
		out review.Outcome
		err error
		at  = h.at(req.At)
	)
	switch {
	case req.Quality != nil:
		out, err = h.reviews.Submit(c.Request.Context(), review.Submission{
			UserID:   c.Param("user"),
			GroupKey: req.GroupKey,
			ItemID:   req.ItemID,
			Quality:  spacedrep.Quality(*req.Quality),
			At:       at,
		})
	case req.ResponseMs != nil && req.Correct != nil:
		if *req.ResponseMs < 0 {
			respondError(c, http.StatusBadRequest, "invalid_request", errors.New("response_ms must not be negative"))
			return
		}
		out, err = h.reviews.SubmitTimed(c.Request.Context(), review.TimedSubmission{
			UserID:     c.Param("user"),
			GroupKey:   req.GroupKey,
			ItemID:     req.ItemID,
			ResponseMs: *req.ResponseMs,
			Correct:    *req.Correct,
			At:         at,
		})
	default:
		respondError(c, http.StatusBadRequest, "invalid_request",
			errors.New("either quality or response_ms and correct are required"))
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	// A review whose progress could not be saved still answers 200;
	// progress_saved=false tells the client.
	respondOK(c, out)
}

type dueRequest struct {
	Title string         `json:"title"`
	Cards []content.Card `json:"cards"`
	Now   *time.Time     `json:"now"`
}

type dueResponse struct {
	GroupKey string            `json:"group_key"`
	Due      []string          `json:"due"`
	Status   review.DeckStatus `json:"status"`
}

func (h *handlers) due(c *gin.Context) {
	var req dueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	deck := content.Deck{Title: req.Title, Cards: req.Cards}
	deck.FillIDs()
	if err := deck.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	ctx := c.Request.Context()
	user := c.Param("user")
	due, err := h.reviews.Due(ctx, user, deck, h.at(req.Now))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	status, err := h.reviews.Statuses(ctx, user, deck)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, dueResponse{GroupKey: deck.GroupKey(), Due: due, Status: status})
}

func (h *handlers) at(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return h.now()
	}
	return *t
}

// bindOptional binds a JSON body when one was sent.
func bindOptional(c *gin.Context, v any) bool {
	if c.Request.ContentLength == 0 || strings.TrimSpace(c.GetHeader("Content-Type")) == "" {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}
