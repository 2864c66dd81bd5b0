// Command token issues a service token for a chat adapter.
//
//	go run ./cmd/token -adapter discord
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/edu-verify/config"
	"github.com/oksasatya/edu-verify/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	adapter := flag.String("adapter", "", "adapter name embedded in the token (e.g. discord)")
	ttl := flag.Duration("ttl", cfg.ServiceTokenTTL, "token lifetime; 0 issues a non-expiring token")
	flag.Parse()

	if *adapter == "" {
		log.Fatal("-adapter is required")
	}
	if cfg.Env == "production" && cfg.ServiceTokenSecret == "devservicesecret" {
		log.Fatal("SERVICE_TOKEN_SECRET is not set")
	}

	tok, exp, err := helpers.NewServiceTokenManager(cfg.ServiceTokenSecret, *ttl).Generate(*adapter)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(tok)
	if !exp.IsZero() {
		log.Printf("expires at %s", exp.UTC().Format(time.RFC3339))
	}
}
