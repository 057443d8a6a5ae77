package main

import (
	"net/http"
	"os"

	"rentautopro/internal/api"
	"rentautopro/internal/auth"
	"rentautopro/internal/db"
	"rentautopro/internal/repository"
	"rentautopro/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
)

func main() {
	godotenv.Load()
	log.SetFormatter(&log.JSONFormatter{})

	conn, err := db.Connect()
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()

	if err := db.RunMigrations(); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	userRepo := repository.NewUserRepository(conn)
	vehicleRepo := repository.NewVehicleRepository(conn)
	rentalRepo := repository.NewRentalRepository(conn)
	maintenanceRepo := repository.NewMaintenanceRepository(conn)
	invoiceRepo := repository.NewInvoiceRepository(conn)
	fuelRepo := repository.NewFuelRepository(conn)
	reportRepo := repository.NewReportRepository(conn)

	senderService := service.NewSenderService()
	stripeService := service.NewStripeService()
	pdfService := service.NewPDFService()
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	vehicleService := service.NewVehicleService(vehicleRepo, maintenanceRepo, rentalRepo, fuelRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, rentalRepo, stripeService, senderService)
	rentalService := service.NewRentalService(rentalRepo, vehicleRepo, userRepo, invoiceService, senderService)
	maintenanceService := service.NewMaintenanceService(maintenanceRepo, vehicleRepo)
	reportService := service.NewReportService(reportRepo, rentalRepo, vehicleRepo, maintenanceRepo)
	jobService := service.NewJobService(invoiceRepo, maintenanceRepo, userRepo, senderService)

	authHandler := api.NewAuthHandler(authService)
	userHandler := api.NewUserHandler(userService)
	vehicleHandler := api.NewVehicleHandler(vehicleService)
	rentalHandler := api.NewRentalHandler(rentalService, pdfService)
	maintenanceHandler := api.NewMaintenanceHandler(maintenanceService)
	invoiceHandler := api.NewInvoiceHandler(invoiceService)
	reportHandler := api.NewReportHandler(reportService)
	webhookHandler := api.NewStripeWebhookHandler(os.Getenv("STRIPE_WEBHOOK_SECRET"), invoiceService)

	r := mux.NewRouter()
	r.Use(api.RequestID)

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/stripe/webhook", webhookHandler.HandleWebhook).Methods("POST")

	// Everything below requires a valid token.
	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(auth.Middleware)

	authed.HandleFunc("/me", userHandler.Me).Methods("GET")

	authed.HandleFunc("/vehicles", vehicleHandler.ListVehicles).Methods("GET")
	authed.HandleFunc("/vehicles/available", vehicleHandler.ListAvailableVehicles).Methods("GET")
	authed.HandleFunc("/vehicles/{id}", vehicleHandler.GetVehicle).Methods("GET")
	authed.HandleFunc("/vehicles/{id}/maintenances", maintenanceHandler.ListVehicleMaintenances).Methods("GET")
	authed.HandleFunc("/vehicles/{id}/rentals", rentalHandler.ListVehicleRentals).Methods("GET")
	authed.HandleFunc("/vehicles/{id}/fuel-records", vehicleHandler.ListFuelRecords).Methods("GET")

	authed.HandleFunc("/rentals", rentalHandler.ListRentals).Methods("GET")
	authed.HandleFunc("/rentals", rentalHandler.CreateRental).Methods("POST")
	authed.HandleFunc("/rentals/check-availability", rentalHandler.CheckAvailability).Methods("POST")
	authed.HandleFunc("/rentals/customer/{id}", rentalHandler.ListCustomerRentals).Methods("GET")
	authed.HandleFunc("/rentals/{id}", rentalHandler.GetRental).Methods("GET")
	authed.HandleFunc("/rentals/{id}/pdf", rentalHandler.DownloadContract).Methods("GET")

	// Fleet management (vehicles, rental lifecycle, reporting)
	fleet := authed.NewRoute().Subrouter()
	fleet.Use(auth.RequireRoles(db.RoleAdmin, db.RoleFleetManager))
	fleet.HandleFunc("/vehicles", vehicleHandler.CreateVehicle).Methods("POST")
	fleet.HandleFunc("/vehicles/{id}", vehicleHandler.UpdateVehicle).Methods("PUT")
	fleet.HandleFunc("/vehicles/{id}", vehicleHandler.DeleteVehicle).Methods("DELETE")
	fleet.HandleFunc("/vehicles/{id}/status", vehicleHandler.UpdateVehicleStatus).Methods("PUT", "PATCH")
	fleet.HandleFunc("/vehicles/{id}/fuel-records", vehicleHandler.AddFuelRecord).Methods("POST")
	fleet.HandleFunc("/rentals/{id}", rentalHandler.UpdateRental).Methods("PUT")
	fleet.HandleFunc("/rentals/{id}", rentalHandler.DeleteRental).Methods("DELETE")
	fleet.HandleFunc("/rentals/{id}/confirm", rentalHandler.ConfirmRental).Methods("POST")
	fleet.HandleFunc("/rentals/{id}/complete", rentalHandler.CompleteRental).Methods("POST")
	fleet.HandleFunc("/rentals/{id}/cancel", rentalHandler.CancelRental).Methods("POST")
	fleet.HandleFunc("/dashboard", reportHandler.Dashboard).Methods("GET")

	// Reporting (accounting reads the same projections the fleet does)
	reports := authed.NewRoute().Subrouter()
	reports.Use(auth.RequireRoles(db.RoleAdmin, db.RoleFleetManager, db.RoleAccounting))
	reports.HandleFunc("/reports/revenue", reportHandler.RevenueReport).Methods("GET")
	reports.HandleFunc("/reports/maintenance-costs", reportHandler.MaintenanceCostReport).Methods("GET")
	reports.HandleFunc("/reports/fleet-availability", reportHandler.FleetAvailabilityReport).Methods("GET")

	// Workshop
	workshop := authed.NewRoute().Subrouter()
	workshop.Use(auth.RequireRoles(db.RoleAdmin, db.RoleFleetManager, db.RoleMechanic))
	workshop.HandleFunc("/maintenances", maintenanceHandler.ListMaintenances).Methods("GET")
	workshop.HandleFunc("/maintenances", maintenanceHandler.CreateMaintenance).Methods("POST")
	workshop.HandleFunc("/maintenances/scheduled", maintenanceHandler.ListScheduled).Methods("GET")
	workshop.HandleFunc("/maintenances/{id}", maintenanceHandler.GetMaintenance).Methods("GET")
	workshop.HandleFunc("/maintenances/{id}", maintenanceHandler.UpdateMaintenance).Methods("PUT")
	workshop.HandleFunc("/maintenances/{id}", maintenanceHandler.DeleteMaintenance).Methods("DELETE")
	workshop.HandleFunc("/maintenance-types", maintenanceHandler.ListTypes).Methods("GET")
	workshop.HandleFunc("/maintenance-types", maintenanceHandler.CreateType).Methods("POST")

	// Billing
	billing := authed.NewRoute().Subrouter()
	billing.Use(auth.RequireRoles(db.RoleAdmin, db.RoleAccounting))
	billing.HandleFunc("/invoices", invoiceHandler.ListInvoices).Methods("GET")
	billing.HandleFunc("/invoices/{id}", invoiceHandler.GetInvoice).Methods("GET")
	billing.HandleFunc("/invoices/{id}/pay", invoiceHandler.PayInvoice).Methods("POST")
	billing.HandleFunc("/invoices/{id}/mark-paid", invoiceHandler.MarkPaid).Methods("POST")
	billing.HandleFunc("/invoices/{id}/cancel", invoiceHandler.CancelInvoice).Methods("POST")

	// User administration
	admin := authed.NewRoute().Subrouter()
	admin.Use(auth.RequireRoles(db.RoleAdmin))
	admin.HandleFunc("/users", userHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/users", userHandler.CreateUser).Methods("POST")
	admin.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET")
	admin.HandleFunc("/users/{id}", userHandler.UpdateUser).Methods("PUT")
	admin.HandleFunc("/users/{id}", userHandler.DeleteUser).Methods("DELETE")

	c := cron.New()
	if _, err := c.AddFunc("@daily", func() {
		if err := jobService.MarkOverdueInvoices(); err != nil {
			log.WithError(err).Error("overdue invoice job failed")
		}
	}); err != nil {
		log.WithError(err).Fatal("failed to schedule overdue invoice job")
	}
	if _, err := c.AddFunc("0 8 * * MON", func() {
		if err := jobService.SendMaintenanceDigest(); err != nil {
			log.WithError(err).Error("maintenance digest job failed")
		}
	}); err != nil {
		log.WithError(err).Fatal("failed to schedule maintenance digest job")
	}
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Infof("server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
