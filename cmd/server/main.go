package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cinemahub/cinema-booking/internal/aggregate"
	"github.com/cinemahub/cinema-booking/internal/broker"
	"github.com/cinemahub/cinema-booking/internal/config"
	"github.com/cinemahub/cinema-booking/internal/database"
	"github.com/cinemahub/cinema-booking/internal/handler"
	"github.com/cinemahub/cinema-booking/internal/queue"
	"github.com/cinemahub/cinema-booking/internal/remote"
	"github.com/cinemahub/cinema-booking/internal/repository"
	"github.com/cinemahub/cinema-booking/internal/router"
	"github.com/cinemahub/cinema-booking/internal/saga"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	invoiceRepo := repository.NewInvoiceRepo(db)
	foodRepo := repository.NewInvoiceFoodRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)

	publisher, err := broker.New(cfg.AMQPURL, broker.LinkageQueue, broker.EntityCreatedQueue)
	if err != nil {
		log.Fatalf("broker: %v", err)
	}
	defer publisher.Close()

	customers := remote.NewCustomerClient(cfg.CustomerServiceURL)
	employees := remote.NewEmployeeClient(cfg.EmployeeServiceURL)
	movies := remote.NewMovieClient(cfg.MovieServiceURL)
	theater := remote.NewTheaterClient(cfg.TheaterServiceURL)
	schedules := remote.NewScheduleClient(cfg.ScheduleServiceURL)
	invoices := remote.NewInvoiceClient(cfg.InvoiceServiceURL)

	cache := aggregate.NewCache(config.NewRedisClient(), cfg.CacheTTL)

	bookingSaga := saga.NewBooking(invoiceRepo, foodRepo, publisher)
	invoiceAgg := aggregate.NewInvoices(invoiceRepo, customers, employees, schedules)
	scheduleAgg := aggregate.NewSchedules(scheduleRepo, movies, theater, invoices, cache)

	// The linkage consumer keeps the local seat-slot mirror in sync with
	// bookings and cancellations; it reconnects on its own.
	go func() {
		if err := queue.StartLinkageConsumer(cfg.AMQPURL, scheduleRepo); err != nil {
			log.Printf("linkage consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterBooking(e, handler.NewBookingHandler(bookingSaga))
	router.RegisterReads(e, handler.NewInvoiceHandler(invoiceAgg), handler.NewScheduleHandler(scheduleAgg))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
