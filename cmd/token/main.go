// Command token mints access tokens for local development, signed with
// JWT_SECRET the same way the identity provider signs them.
//
//	go run ./cmd/token -user 3f0c... -role org -ttl 1h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/iliyamo/event-seat-reservation/internal/service"
	"github.com/iliyamo/event-seat-reservation/internal/utils"
)

func main() {
	_ = godotenv.Load()

	user := flag.String("user", "", "user id placed in sub (random UUID when empty)")
	role := flag.String("role", service.RoleClient, "role claim: admin, org or client")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(2)
	}
	switch *role {
	case service.RoleAdmin, service.RoleOrg, service.RoleClient:
	default:
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}
	if *user == "" {
		*user = uuid.NewString()
	}

	tok, err := utils.NewAccessToken(secret, *user, *role, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign token:", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "sub=%s role=%s expires=%s\n", *user, *role, tok.Exp.Format(time.RFC3339))
	fmt.Println(tok.Token)
}
