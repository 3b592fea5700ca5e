// Package main provides support-desk utilities for JobMandu.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mitronepal/JobMandu/internal/bootstrap"
	"github.com/mitronepal/JobMandu/internal/config"
	"github.com/mitronepal/JobMandu/internal/database"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/service"
)

const usage = `Usage:
  go run ./cmd/admin block <uid|email>     - Suspend an account
  go run ./cmd/admin unblock <uid|email>   - Reinstate an account after review
  go run ./cmd/admin status <uid|email>    - Show role, block state and reports received
  go run ./cmd/admin migrate               - Apply the SQL schema`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer rt.Close(ctx)

	command := os.Args[1]
	if command == "migrate" {
		if rt.DB == nil {
			log.Fatalf("migrate only applies to the SQL store")
		}
		if err := database.Migrate(rt.DB); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("✅ Schema is up to date")
		return
	}

	if len(os.Args) < 3 {
		fmt.Println(usage)
		os.Exit(1)
	}

	profiles := service.NewProfileService(rt.Stores.Profiles, rt.Redis)
	uid, err := resolveUID(ctx, rt, os.Args[2])
	if err != nil {
		log.Fatalf("%v", err)
	}

	switch command {
	case "block":
		if err := profiles.Block(ctx, uid); err != nil {
			log.Fatalf("Failed to block %s: %v", uid, err)
		}
		fmt.Printf("✅ Blocked %s\n", uid)
	case "unblock":
		if err := profiles.Unblock(ctx, uid); err != nil {
			log.Fatalf("Failed to unblock %s: %v", uid, err)
		}
		fmt.Printf("✅ Unblocked %s\n", uid)
	case "status":
		p, err := profiles.Get(ctx, uid)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", uid, err)
		}
		printProfile(p)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

// resolveUID accepts either a uid or an account email.
func resolveUID(ctx context.Context, rt *bootstrap.Runtime, arg string) (string, error) {
	if !strings.Contains(arg, "@") {
		return arg, nil
	}
	account, err := rt.Stores.Accounts.GetByEmail(ctx, arg)
	if err != nil {
		return "", fmt.Errorf("no account for %s: %w", arg, err)
	}
	return account.ID, nil
}

func printProfile(p *models.Profile) {
	fmt.Println("─────────────────────────────────────")
	fmt.Printf("UID:              %s\n", p.ID)
	fmt.Printf("Email:            %s\n", p.Email)
	fmt.Printf("Name:             %s\n", p.DisplayName)
	fmt.Printf("Role:             %s\n", p.Role)
	fmt.Printf("Blocked:          %v\n", p.IsBlocked)
	fmt.Printf("Reports received: %d\n", p.ReportsReceived)
	fmt.Println("─────────────────────────────────────")
}
