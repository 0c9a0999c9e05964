package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	settings := config.Load()
	db, err := gorm.Open(postgres.Open(settings.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "pending":
		intents, err := storageSvc.ListPendingIntents()
		if err != nil {
			log.Fatalf("Error listing pending intents: %v", err)
		}
		for _, intent := range intents {
			fmt.Printf("%d\t%s\t%s %s\t%s\n",
				intent.ID, intent.IdentityKey, intent.FirstName, intent.LastName,
				intent.CreatedAt.Format(time.RFC3339))
		}
	case "connections":
		states := models.ConnectionStates
		if len(os.Args) > 2 {
			states = states[:0:0]
			for _, part := range strings.Split(os.Args[2], ",") {
				states = append(states, models.ConnectionState(strings.TrimSpace(part)))
			}
		}
		conns, err := storageSvc.ListConnectionsByStates(states)
		if err != nil {
			log.Fatalf("Error listing connections: %v", err)
		}
		for _, conn := range conns {
			fmt.Printf("%d\t%s -> %s\t%s\n", conn.ID, conn.UserRef, conn.PartnerRef, conn.State)
		}
	case "close":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin close <user_ref> <partner_ref>")
			os.Exit(1)
		}
		if err := closeConnection(storageSvc, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Error closing connection: %v", err)
		}
		fmt.Printf("Connection %s -> %s has been closed.\n", os.Args[2], os.Args[3])
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func closeConnection(s storage.Storage, userRef, partnerRef string) error {
	conn, err := s.GetLatestConnection(userRef, partnerRef)
	if err != nil {
		return err
	}
	if conn == nil {
		return fmt.Errorf("no connection found for %s -> %s", userRef, partnerRef)
	}
	if err := s.SetConnectionState(userRef, partnerRef, models.ConnectionClosed); err != nil {
		return err
	}
	now := time.Now()
	return s.StampConnectionTimelog(conn.ID, models.ConnectionTimelog{TimeClosed: &now})
}
