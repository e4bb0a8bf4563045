package main

import (
	"github.com/joho/godotenv"

	"gatepass-client/cmd"
)

func main() {
	// Optional .env for local development; real deployments configure
	// through the environment or instance/config.yaml.
	godotenv.Load()

	cmd.Execute()
}
