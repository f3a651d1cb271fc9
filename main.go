package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/pavnoorsra/pswhiteboard/database"
	"github.com/pavnoorsra/pswhiteboard/handlers"
	"github.com/pavnoorsra/pswhiteboard/pages"
	"github.com/pavnoorsra/pswhiteboard/realtime"
	"github.com/pavnoorsra/pswhiteboard/rooms"
	"github.com/pavnoorsra/pswhiteboard/strokelog"
)

func main() {

	// segment store
	store, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect segment store: %v", err)
	}

	// core
	strokeLog := strokelog.New(store)
	pageManager := pages.NewManager()
	registry := rooms.NewRegistry(pageManager.NewPage)
	service := realtime.NewService(registry, strokeLog, pageManager)

	// router
	router := gin.Default()
	router.GET("/ws", handlers.Whiteboard(service))
	router.GET("/pages/:pageID/segments", handlers.PageSegments(strokeLog))

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("Whiteboard sync server starting on :%s", port)
	router.Run(":" + port)
}
