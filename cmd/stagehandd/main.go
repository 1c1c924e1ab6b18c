package main

import (
	"context"
	"flag"
	"log"

	"stagehand/internal/config"
	"stagehand/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	socketPath := flag.String("socket", "", "daemon socket path override")
	flag.Parse()

	cfg, resolvedPath, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *socketPath != "" {
		cfg.Paths.Socket = *socketPath
	}

	if err := daemonrun.Run(context.Background(), cfg, resolvedPath); err != nil {
		log.Fatalf("stagehandd: %v", err)
	}
}
