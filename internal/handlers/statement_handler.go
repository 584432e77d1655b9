package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bank-reconciliation-workspace/internal/session"
)

type StatementHandler struct {
	session *session.Session
}

func NewStatementHandler(s *session.Session) *StatementHandler {
	return &StatementHandler{session: s}
}

// Import receives a statement file upload. The import is durable as soon as
// this returns success; the client-side confirmation step only chooses
// whether to navigate into the matching flow.
func (h *StatementHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		log.Printf("reading statement upload %q: %v", header.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}

	importedBy := c.PostForm("importedBy")
	result, err := h.session.ImportStatement(raw, header.Filename, importedBy)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "statement imported",
		"batchId":          result.BatchID.String(),
		"transactionCount": len(result.Transactions),
		"proposalCount":    len(result.Proposals),
	})
}

func (h *StatementHandler) Recent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"statements": h.session.History()})
}

func (h *StatementHandler) Delete(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	if err := h.session.DeleteImportBatch(batchID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "import batch deleted"})
}
