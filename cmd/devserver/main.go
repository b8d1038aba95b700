// devserver is an in-memory stand-in for the order backend: the REST
// contract, the SSE event stream, and authoritative transition enforcement.
// It exists so the POS client can be run and integration-tested without a
// real backend; nothing it stores survives a restart.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gin-gonic/gin"

	"resto-pos/config"
	"resto-pos/controllers"
	"resto-pos/middleware"
	"resto-pos/models"
	"resto-pos/realtime"
	"resto-pos/repositories"
	"resto-pos/routes"
)

func main() {
	config.LoadConfig()

	if config.AppConfig.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	repo := repositories.NewOrderRepository()
	repo.SeedDemo()
	hub := controllers.NewEventHub()

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	routes.SetupRoutes(router, repo, hub)

	if interval := config.AppConfig.SeedInterval; interval > 0 {
		go generateOrders(repo, hub, interval)
	}

	port := ":" + config.AppConfig.Port
	log.Printf("Dev order backend on port %s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// generateOrders keeps the kitchen queue moving during demos.
func generateOrders(repo *repositories.OrderRepository, hub *controllers.EventHub, interval time.Duration) {
	names := []string{"Adi", "Bela", "Citra", "Doni", "Eka", "Fajar"}
	menu := []models.OrderLine{
		{Quantity: 1, ProductName: "Nasi Goreng", UnitPrice: 35000},
		{Quantity: 1, ProductName: "Sate Ayam", UnitPrice: 30000},
		{Quantity: 1, ProductName: "Es Jeruk", UnitPrice: 10000},
		{Quantity: 1, ProductName: "Mie Ayam", UnitPrice: 25000},
	}
	types := []models.OrderType{models.OrderTypeDineIn, models.OrderTypeTakeaway, models.OrderTypeDelivery}

	for range time.Tick(interval) {
		line := menu[rand.Intn(len(menu))]
		line.Quantity = 1 + rand.Intn(3)
		order := models.Order{
			CustomerName: names[rand.Intn(len(names))],
			Type:         types[rand.Intn(len(types))],
			Items:        []models.OrderLine{line},
		}
		if order.Type == models.OrderTypeDineIn {
			n := 1 + rand.Intn(12)
			order.Table = &models.TableRef{ID: n, Name: fmt.Sprintf("T%d", n), Location: "Main hall"}
		}
		created := repo.Insert(order)
		hub.Publish(realtime.EventNewOrder)
		log.Printf("Generated order %s for %s", created.TransactionCode, created.CustomerName)
	}
}
