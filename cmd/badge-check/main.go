// Package main provides an operational CLI for inspecting badge state.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/tier-badge/internal/config"
	"github.com/tier-badge/internal/storage"
)

func main() {
	ownerFlag := flag.String("owner", "", "Specific owner to check (base58 pubkey, optional)")
	expiredFlag := flag.Bool("expired", false, "List expired badges")
	limitFlag := flag.Int("limit", 100, "Maximum rows to list")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error connecting to Postgres: %v\n", err)
		os.Exit(1)
	}
	defer postgres.Close()

	repo := storage.NewBadgeRepository(postgres)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().Unix()

	switch {
	case *ownerFlag != "":
		owner, err := solana.PublicKeyFromBase58(*ownerFlag)
		if err != nil {
			fmt.Printf("Invalid owner address: %v\n", err)
			os.Exit(1)
		}
		badge, err := repo.GetByOwner(ctx, owner)
		if err != nil {
			if err == storage.ErrBadgeNotFound {
				fmt.Printf("No badge found for %s\n", owner)
				return
			}
			fmt.Printf("Error loading badge: %v\n", err)
			os.Exit(1)
		}
		state := "live"
		if badge.Expired(now) {
			state = "expired"
		}
		fmt.Printf("Owner:      %s\n", badge.Owner)
		fmt.Printf("Tier:       %s (%d)\n", badge.Tier, badge.Tier)
		fmt.Printf("Bounds:     [%d, %d) cents\n", badge.TierLowerBound, badge.TierUpperBound)
		fmt.Printf("VerifiedAt: %s\n", time.Unix(badge.VerifiedAt, 0).UTC().Format(time.RFC3339))
		fmt.Printf("ExpiresAt:  %s (%s)\n", time.Unix(badge.ExpiresAt, 0).UTC().Format(time.RFC3339), state)

	case *expiredFlag:
		badges, err := repo.ListExpired(ctx, now, *limitFlag)
		if err != nil {
			fmt.Printf("Error listing expired badges: %v\n", err)
			os.Exit(1)
		}
		if len(badges) == 0 {
			fmt.Println("No expired badges")
			return
		}
		fmt.Printf("%d expired badge(s):\n", len(badges))
		for _, badge := range badges {
			fmt.Printf("  %s  tier=%s  expired=%s\n",
				badge.Owner,
				badge.Tier,
				time.Unix(badge.ExpiresAt, 0).UTC().Format(time.RFC3339),
			)
		}

	default:
		total, err := repo.Count(ctx)
		if err != nil {
			fmt.Printf("Error counting badges: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Total badges: %d\n", total)
		fmt.Println("Use -owner <pubkey> or -expired to inspect records")
	}
}
