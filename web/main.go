package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/df07/go-lightpath/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	levelsDir := flag.String("levels", "../levels", "Directory scanned for level files")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "lightpath-web"})
	if lvl, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(lvl)
	}

	webServer := server.NewServer(*port, *levelsDir, logger)

	logger.Info("Lightpath Web Server")
	logger.Infof("Visit http://localhost:%d to play", *port)

	if err := webServer.Start(); err != nil {
		logger.Error("Error starting server", "err", err)
		os.Exit(1)
	}
}
