package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/staybook/reservation-backend/internal/models"
	"github.com/staybook/reservation-backend/pkg/jwt"
)

// issue-token signs a bearer token for local testing against either service
func main() {
	username := flag.String("username", "", "username claim")
	role := flag.String("role", string(models.RoleUser), "role claim (ADMIN or USER)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	if *username == "" {
		log.Fatal("-username is required")
	}
	if !models.Role(*role).IsValid() {
		log.Fatalf("invalid role %q: must be ADMIN or USER", *role)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "staybook"
	}

	token, err := jwt.NewService(secret, issuer, *ttl).GenerateAccessToken(*username, *role)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
