package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"bank-reconciliation-workspace/internal/config"
	"bank-reconciliation-workspace/internal/models"
	"bank-reconciliation-workspace/internal/routes"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	opts := config.FromEnv()
	db := config.InitDB()

	db.AutoMigrate(
		&models.RegisterRow{},
		&models.BankTransaction{},
		&models.Match{},
		&models.ReconciliationDraft{},
		&models.CommittedReconciliation{},
		&models.ImportBatch{},
		&models.MatchAuditLog{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{opts.AllowOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, opts)

	r.Run(opts.ListenAddr)
}
