package main

import (
	"gapscout/cmd/handlers"
	"gapscout/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
