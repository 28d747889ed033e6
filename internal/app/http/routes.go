package routes

import (
	"net/http"
	"strings"

	auctionsapi "auction-house/internal/api/auctions"
	authapi "auction-house/internal/api/auth"
	billingapi "auction-house/internal/api/billing"
	catalogueapi "auction-house/internal/api/catalogue"
	clientsapi "auction-house/internal/api/clients"
	lotsapi "auction-house/internal/api/lots"
	stripewebhooks "auction-house/internal/api/stripewebhook"
	"auction-house/internal/app/http/middleware"
	"auction-house/internal/domain/auctions"
	"auction-house/internal/domain/billing"
	"auction-house/internal/domain/catalogue"
	"auction-house/internal/domain/clients"
	"auction-house/internal/domain/commission"
	"auction-house/internal/domain/triage"

	"github.com/gin-gonic/gin"
)

// Deps carries everything the route table needs. Services are built once at
// start-up and shared by every request.
type Deps struct {
	Tokens    *clients.Tokens
	Clients   *clients.Service
	Auctions  *auctions.AuctionManager
	Lots      *auctions.LotManager
	Catalogue *catalogue.Service
	PDF       *catalogue.PDFService
	Billing   *billing.Service

	Commission commission.Policy
	Triage     triage.Policy

	Google              *authapi.GoogleConfig
	StripeWebhookSecret string

	// UploadDir is served under UploadPath when both are set (disk storage).
	UploadDir  string
	UploadPath string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	auctionH := auctionsapi.NewHandler(d.Auctions, d.PDF)
	lotH := lotsapi.NewHandler(d.Lots, d.Billing, d.Commission, d.Triage)
	catalogueH := catalogueapi.NewHandler(d.Catalogue)
	clientH := clientsapi.NewHandler(d.Clients, d.Lots)
	authH := authapi.NewHandler(d.Clients, d.Tokens, d.Google)
	billingH := billingapi.NewHandler(d.Billing)
	webhookH := stripewebhooks.NewHandler(d.Billing, d.StripeWebhookSecret)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.UploadDir != "" && strings.HasPrefix(d.UploadPath, "/") {
		r.Static(d.UploadPath, d.UploadDir)
	}

	// The signature covers the raw body, so this stays outside the sanitiser.
	r.POST("/api/webhooks/stripe", webhookH.StripeWebhook)

	api := r.Group("/api")
	api.Use(middleware.SanitizeAndCleanInputMiddleware())

	// Public
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/token", authH.Token)
	api.GET("/auth/google", authH.GoogleStart)
	api.GET("/auth/google/callback", authH.GoogleCallback)

	api.GET("/auctions", auctionH.List)
	api.GET("/auctions/:id", auctionH.Get)

	api.GET("/lots", lotH.List)
	api.GET("/lots/suggest-triage", lotH.SuggestTriage)
	api.GET("/lots/:id", lotH.Get)
	api.POST("/calculate-commission", lotH.CalculateCommission)

	api.GET("/catalogue/search", catalogueH.Search)
	api.GET("/categories", catalogueH.Categories)

	// Authenticated
	auth := api.Group("/")
	auth.Use(middleware.AuthMiddleware(d.Tokens))
	auth.GET("/auth/me", authH.Me)
	auth.POST("/settlements/:id/checkout", billingH.CreateCheckoutSession)
	auth.GET("/clients/:id/lots", middleware.RequireSelfOrStaff("id"), clientH.Lots)

	// Staff
	staff := auth.Group("/")
	staff.Use(middleware.RequireStaff())

	staff.POST("/auctions", auctionH.Create)
	staff.PUT("/auctions/:id", auctionH.Update)
	staff.DELETE("/auctions/:id", auctionH.Delete)
	staff.PUT("/auctions/:id/archive", auctionH.Archive)
	staff.PUT("/auctions/:id/unarchive", auctionH.Unarchive)
	staff.PUT("/auctions/:id/complete", auctionH.Complete)
	staff.PUT("/auctions/:id/cancel", auctionH.Cancel)
	staff.POST("/auctions/:id/generate-pdf", auctionH.GeneratePDF)

	staff.POST("/lots", lotH.Create)
	staff.PUT("/lots/:id", lotH.Update)
	staff.DELETE("/lots/:id", lotH.Delete)
	staff.PUT("/lots/:id/archive", lotH.Archive)
	staff.PUT("/lots/:id/unarchive", lotH.Unarchive)
	staff.PUT("/lots/:id/assign-auction", lotH.AssignAuction)
	staff.PUT("/lots/:id/withdraw", lotH.Withdraw)
	staff.POST("/lots/:id/complete-sale", lotH.CompleteSale)
	staff.GET("/lots/:id/settlement", lotH.Settlement)
	staff.POST("/lots/:id/images", lotH.UploadImage)
	staff.DELETE("/lots/images/:image_id", lotH.DeleteImage)
	staff.PUT("/lots/images/:image_id/primary", lotH.SetPrimaryImage)

	staff.GET("/settlements", billingH.List)
}
