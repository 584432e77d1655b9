package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bank-reconciliation-workspace/internal/session"
)

type SessionHandler struct {
	session *session.Session
}

func NewSessionHandler(s *session.Session) *SessionHandler {
	return &SessionHandler{session: s}
}

// statusFor maps engine errors onto HTTP statuses. Errors travel as message
// strings in the JSON body.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotBalanced),
		errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrCommitInFlight):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoActiveAccount),
		errors.Is(err, session.ErrUnknownEntry),
		errors.Is(err, session.ErrUnknownField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func (h *SessionHandler) Activate(c *gin.Context) {
	var payload struct {
		Company string `json:"company"`
		Account string `json:"account"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.Company == "" || payload.Account == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company and account required"})
		return
	}

	if err := h.session.ActivateAccount(payload.Company, payload.Account); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *SessionHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"snapshot":      h.session.Snapshot(),
		"lastCommitted": h.session.LastCommitted(),
	})
}

func (h *SessionHandler) Register(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.session.RegisterEntries()})
}

func (h *SessionHandler) Transactions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"transactions": h.session.BankTransactions(),
		"unmatched":    h.session.UnmatchedBankTransactions(),
	})
}

func (h *SessionHandler) Matches(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"matches": h.session.Matches()})
}

func (h *SessionHandler) EditField(c *gin.Context) {
	var payload struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.session.EditField(payload.Name, payload.Value); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *SessionHandler) ToggleSelection(c *gin.Context) {
	var payload struct {
		EntryID string `json:"entryId"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.session.ToggleSelection(payload.EntryID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *SessionHandler) BulkSelect(c *gin.Context) {
	var payload struct {
		EntryIDs []string `json:"entryIds"`
		Included bool     `json:"included"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.session.BulkSelect(payload.EntryIDs, payload.Included); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

func (h *SessionHandler) Save(c *gin.Context) {
	if err := h.session.Save(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "draft saved"})
}

func (h *SessionHandler) Discard(c *gin.Context) {
	if err := h.session.Discard(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "draft discarded"})
}

func (h *SessionHandler) Commit(c *gin.Context) {
	var payload struct {
		CommittedBy string `json:"committedBy"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	rec, err := h.session.Commit(payload.CommittedBy)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reconciliation committed", "reconciliation": rec})
}
