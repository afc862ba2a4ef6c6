package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"beatreach-service/internal/config"
	"beatreach-service/internal/pkg/jwt"

	"github.com/joho/godotenv"
)

// tokengen mints operator tokens for the admin API. Intended for local
// development and CI, not for issuing production credentials.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[TOKENGEN] No .env file found, relying on system env vars")
	}

	var (
		subject = flag.String("subject", "dev-operator", "Token subject")
		roles   = flag.String("roles", "operator", "Comma-separated roles")
		storeID = flag.String("store", "", "Optional store scope")
	)
	flag.Parse()

	cfg := config.Load()
	generator, err := jwt.BuildGenerator(cfg.JWT)
	if err != nil {
		log.Fatalf("failed to build token generator: %v", err)
	}

	token, jti, err := generator.Generate(*subject, strings.Split(*roles, ","), *storeID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Println(token)
	log.Printf("issued token jti=%s subject=%s", jti, *subject)
}
