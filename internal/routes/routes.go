package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bank-reconciliation-workspace/internal/backend"
	"bank-reconciliation-workspace/internal/config"
	handler "bank-reconciliation-workspace/internal/handlers"
	"bank-reconciliation-workspace/internal/session"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, opts config.Options) {
	store := backend.NewStore(db)
	sess := session.New(store, session.Options{SaveDebounce: opts.SaveDebounce})

	sessionHandler := handler.NewSessionHandler(sess)
	matchingHandler := handler.NewMatchingHandler(sess)
	statementHandler := handler.NewStatementHandler(sess)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Outstanding register entries for the active account
	api.GET("/register", sessionHandler.Register)

	// Session and draft routes
	sessionGroup := api.Group("/session")
	sessionGroup.POST("/activate", sessionHandler.Activate)
	sessionGroup.GET("/state", sessionHandler.State)
	sessionGroup.GET("/register", sessionHandler.Register)
	sessionGroup.GET("/transactions", sessionHandler.Transactions)
	sessionGroup.GET("/matches", sessionHandler.Matches)
	sessionGroup.POST("/draft/field", sessionHandler.EditField)
	sessionGroup.POST("/draft/toggle", sessionHandler.ToggleSelection)
	sessionGroup.POST("/draft/bulk-select", sessionHandler.BulkSelect)
	sessionGroup.POST("/draft/save", sessionHandler.Save)
	sessionGroup.POST("/draft/discard", sessionHandler.Discard)
	sessionGroup.POST("/draft/commit", sessionHandler.Commit)

	// Matching routes
	match := api.Group("/matching")
	match.POST("/run", matchingHandler.Run)
	match.POST("/clear-rerun", matchingHandler.ClearAndRerun)
	match.POST("/manual/preview", matchingHandler.ManualPreview)
	match.POST("/manual", matchingHandler.Manual)
	match.POST("/unmatch", matchingHandler.Unmatch)
	match.POST("/bulk-unmatch", matchingHandler.BulkUnmatch)

	// Statement import routes
	statements := api.Group("/statements")
	{
		statements.POST("/import", statementHandler.Import)
		statements.GET("/recent", statementHandler.Recent)
		statements.DELETE("/:batchId", statementHandler.Delete)
	}
}
