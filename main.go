package main

import (
	"context"
	"fieldops-client/controller"
	"fieldops-client/models"
	"fieldops-client/utils"
	"fieldops-client/utils/logger"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
)

var config *models.Config

func Init() {
	var err error
	config, err = utils.GetConfig()
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	Init()
	fmt.Println("Config Loaded ::", utils.PrintPrettyJSON(config))

	ctx := context.Background()

	r := gin.New()
	c := controller.NewController(ctx, config, logger.NewLogger(config.LogLevel, config.LogFormat))

	// Start the client surface (this is blocking)
	go c.RegisterRoutes(ctx, config, r, config.BasePath)

	// Start the sync coordinator in the background
	if err := c.Sync.StartInBackground(); err != nil {
		log.Fatalf("Failed to start sync service: %v", err)
	}

	// Keep main goroutine alive
	select {}
}
