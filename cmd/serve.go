package cmd

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/cobra"
	"github.com/statutecheck/statutecheck/internal/auth"
	"github.com/statutecheck/statutecheck/internal/config"
	"github.com/statutecheck/statutecheck/internal/handlers"
	"github.com/statutecheck/statutecheck/internal/service"
	"github.com/statutecheck/statutecheck/internal/store"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the statutecheck web server",
	Long:  `Start the public lookup site and the admin content console.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		// Use PORT env var if set, otherwise use flag value
		if port == "8080" && os.Getenv("PORT") != "" {
			port = cfg.Port
		}

		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Initialize stores
		stateStore := store.NewStateStore(db)
		issueStore := store.NewIssueStore(db)
		claimsStore := store.NewSmallClaimsStore(db)
		statuteStore := store.NewStatuteStore(db)
		approvalStore := store.NewApprovalStore(db)
		userStore := store.NewUserStore(db)
		logStore := store.NewLoginLogStore(db)
		reportStore := store.NewReportStore(db)

		queue := service.NewChangeQueue(approvalStore, claimsStore, statuteStore)

		app := fiber.New(fiber.Config{
			AppName: "statutecheck",
		})

		app.Use(logger.New())

		// Public routes
		app.Get("/", handlers.HomeHandler(stateStore))
		app.Get("/api/issues/:state", handlers.IssuesByStateHandler(stateStore, issueStore))
		app.Get("/limitations/:state/:issue", handlers.StatuteDetailHandler(statuteStore))
		app.Post("/report-issue", handlers.ReportIssueHandler(reportStore))
		app.Get("/sitemap.xml", handlers.SitemapHandler(statuteStore))

		// Auth
		app.Post("/login", handlers.LoginHandler(userStore, logStore, cfg.JWTSecret))

		// Admin console, all behind the session middleware
		admin := app.Group("/admin", auth.Protected(cfg.JWTSecret, userStore.LoadActor))

		// Issues (lookup table, direct CRUD)
		admin.Get("/issues", handlers.IssuesListHandler(issueStore))
		admin.Post("/issues", handlers.IssueCreateHandler(issueStore))
		admin.Put("/issues/:id", handlers.IssueUpdateHandler(issueStore))
		admin.Delete("/issues/:id", handlers.IssueDeleteHandler(issueStore))

		// Small claims (queue-gated)
		admin.Get("/small_claims", handlers.SmallClaimsListHandler(claimsStore))
		admin.Post("/small_claims", handlers.SmallClaimsCreateHandler(queue))
		admin.Put("/small_claims/:id", handlers.SmallClaimsUpdateHandler(queue))
		admin.Delete("/small_claims/:id", handlers.SmallClaimsDeleteHandler(queue))

		// Statutes (queue-gated)
		admin.Get("/statutes", handlers.StatutesListHandler(statuteStore))
		admin.Post("/statutes", handlers.StatuteCreateHandler(queue))
		admin.Put("/statutes/:id", handlers.StatuteUpdateHandler(queue))
		admin.Delete("/statutes/:id", handlers.StatuteDeleteHandler(queue))

		// Approval queue
		admin.Get("/approvals/small_claims", handlers.PendingSmallClaimsHandler(approvalStore))
		admin.Get("/approvals/small_claims/:id", handlers.SmallClaimsApprovalViewHandler(approvalStore, claimsStore))
		admin.Post("/approvals/small_claims/:id/approve", handlers.ApproveSmallClaimsHandler(queue))
		admin.Post("/approvals/small_claims/:id/reject", handlers.RejectSmallClaimsHandler(queue))
		admin.Get("/approvals/statutes", handlers.PendingStatutesHandler(approvalStore))
		admin.Get("/approvals/statutes/:id", handlers.StatuteApprovalViewHandler(approvalStore, statuteStore))
		admin.Post("/approvals/statutes/:id/approve", handlers.ApproveStatuteHandler(queue))
		admin.Post("/approvals/statutes/:id/reject", handlers.RejectStatuteHandler(queue))

		// System
		admin.Get("/users", handlers.UsersListHandler(userStore))
		admin.Post("/users", handlers.UserCreateHandler(userStore))
		admin.Delete("/users/:id", handlers.UserDeleteHandler(userStore))
		admin.Get("/roles", handlers.RolesListHandler(userStore))
		admin.Put("/roles/:id", handlers.RoleUpdateHandler(userStore))
		admin.Get("/logs/login", handlers.LoginLogsHandler(logStore))

		log.Printf("Starting server on :%s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on")
}
