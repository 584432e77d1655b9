package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bank-reconciliation-workspace/internal/services/matching"
	"bank-reconciliation-workspace/internal/session"
)

type MatchingHandler struct {
	session *session.Session
}

func NewMatchingHandler(s *session.Session) *MatchingHandler {
	return &MatchingHandler{session: s}
}

type matchRunPayload struct {
	LimitToStatementDate bool   `json:"limitToStatementDate"`
	StatementDate        string `json:"statementDate"`
}

func (p matchRunPayload) options(c *gin.Context) (matching.Options, bool) {
	opts := matching.Options{LimitToStatementDate: p.LimitToStatementDate}
	if p.LimitToStatementDate {
		t, err := time.Parse("2006-01-02", p.StatementDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statement date, expected yyyy-mm-dd"})
			return opts, false
		}
		opts.StatementDate = t
	}
	return opts, true
}

func (h *MatchingHandler) Run(c *gin.Context) {
	var payload matchRunPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	opts, ok := payload.options(c)
	if !ok {
		return
	}

	stats, err := h.session.RunMatching(opts)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "matching completed", "stats": stats})
}

func (h *MatchingHandler) ClearAndRerun(c *gin.Context) {
	var payload matchRunPayload
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	opts, ok := payload.options(c)
	if !ok {
		return
	}

	stats, err := h.session.ClearAndRerun(opts)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "matches cleared and rerun", "stats": stats})
}

func (h *MatchingHandler) ManualPreview(c *gin.Context) {
	var payload struct {
		BankTransactionID string   `json:"bankTransactionId"`
		RegisterEntryIDs  []string `json:"registerEntryIds"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	txID, err := uuid.Parse(payload.BankTransactionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	delta, err := h.session.ManualMatchPreview(txID, payload.RegisterEntryIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delta": delta})
}

func (h *MatchingHandler) Manual(c *gin.Context) {
	var payload struct {
		BankTransactionID string   `json:"bankTransactionId"`
		RegisterEntryIDs  []string `json:"registerEntryIds"`
		PerformedBy       string   `json:"performedBy"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	txID, err := uuid.Parse(payload.BankTransactionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	if err := h.session.ManualMatch(txID, payload.RegisterEntryIDs, payload.PerformedBy); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction manually matched"})
}

func (h *MatchingHandler) Unmatch(c *gin.Context) {
	var payload struct {
		BankTransactionID string `json:"bankTransactionId"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	txID, err := uuid.Parse(payload.BankTransactionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID"})
		return
	}

	if err := h.session.Unmatch(txID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction unmatched"})
}

func (h *MatchingHandler) BulkUnmatch(c *gin.Context) {
	var payload struct {
		BankTransactionIDs []string `json:"bankTransactionIds"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ids := make([]uuid.UUID, 0, len(payload.BankTransactionIDs))
	for _, raw := range payload.BankTransactionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction ID: " + raw})
			return
		}
		ids = append(ids, id)
	}

	outcomes, err := h.session.BulkUnmatch(ids)
	if err != nil {
		fail(c, err)
		return
	}

	failed := 0
	for _, o := range outcomes {
		if o.Error != "" {
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "bulk unmatch completed",
		"outcomes": outcomes,
		"failed":   failed,
	})
}
