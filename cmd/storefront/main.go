package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/example/storefront-sync/internal/api"
	"github.com/example/storefront-sync/internal/cart"
	"github.com/example/storefront-sync/internal/item"
	"github.com/example/storefront-sync/internal/localstore"
	"github.com/example/storefront-sync/internal/notify"
	"github.com/example/storefront-sync/internal/session"
	"github.com/example/storefront-sync/internal/wishlist"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Configuration from environment variables
	apiURL := getEnv("STOREFRONT_API_URL", "http://localhost:8080")
	dataDir := getEnv("STOREFRONT_DATA_DIR", ".storefront")
	postgresConnStr := os.Getenv("DATABASE_URL")
	kafkaBrokersStr := os.Getenv("KAFKA_BROKERS")
	kafkaTopic := getEnv("KAFKA_TOPIC", "storefront-events")
	accessToken := os.Getenv("STOREFRONT_ACCESS_TOKEN")

	log.Println("[Storefront] ========================================")
	log.Println("[Storefront] Storefront sync client")
	log.Println("[Storefront] ========================================")
	log.Printf("[Storefront] Backend: %s", apiURL)

	// Local store: Postgres when configured (kiosk/gateway), files otherwise.
	var local localstore.Store
	if postgresConnStr != "" {
		db, err := localstore.ConnectPostgres(postgresConnStr)
		if err != nil {
			log.Fatalf("[Storefront] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		store, err := localstore.NewPostgresStore(db, os.Getenv("STOREFRONT_DEVICE_ID"))
		if err != nil {
			log.Fatalf("[Storefront] Failed to init Postgres store: %v", err)
		}
		log.Printf("[Storefront] Local store: PostgreSQL (device %s)", store.DeviceID())
		local = store
	} else {
		store, err := localstore.NewFileStore(dataDir)
		if err != nil {
			log.Fatalf("[Storefront] Failed to init file store: %v", err)
		}
		log.Printf("[Storefront] Local store: %s", dataDir)
		local = store
	}

	// Collection-changed notifications: always the in-process bus, plus
	// Kafka when brokers are configured.
	bus := notify.NewBus()
	var notifier notify.Publisher = bus
	if kafkaBrokersStr != "" {
		brokers := strings.Split(kafkaBrokersStr, ",")
		kp := notify.NewKafkaPublisher(brokers, kafkaTopic)
		defer kp.Close()
		notifier = notify.Multi{bus, kp}
		log.Printf("[Storefront] Publishing changes to Kafka: %v", brokers)
	}

	changes, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	go func() {
		for c := range changes {
			log.Printf("[Storefront] %s %s: %d items, total %d", c.Collection, c.Op, c.Count, c.Total)
		}
	}()

	client := api.NewClient(apiURL, 10*time.Second)
	sess := session.NewSession()

	cartMgr := cart.NewManager(local, client, sess, notifier)
	defer cartMgr.Close()
	wishMgr := wishlist.NewManager(local, client, sess, notifier)
	defer wishMgr.Close()

	log.Printf("[Storefront] Cart: %d items, subtotal %d (%s)", cartMgr.Count(), cartMgr.Subtotal(), cartMgr.State())
	log.Printf("[Storefront] Wishlist: %d items (%s)", wishMgr.Count(), wishMgr.State())

	// Smoke flow: add a demo item anonymously, then merge if a token was
	// provided.
	if sku := os.Getenv("STOREFRONT_DEMO_SKU"); sku != "" {
		demo := item.CartItem{
			ProductID: getEnv("STOREFRONT_DEMO_PRODUCT", "demo-product"),
			Name:      "Demo item",
			Price:     100,
			SKU:       sku,
		}
		if err := cartMgr.Add(ctx, demo); err != nil {
			log.Printf("[Storefront] Demo add failed: %v", err)
		}
	}

	if accessToken != "" {
		if _, err := sess.Login(accessToken); err != nil {
			log.Printf("[Storefront] Login skipped: %v", err)
		} else {
			merge := cartMgr.LastMerge()
			log.Printf("[Storefront] Merge: %d merged, %d dropped, %d failed", merge.Merged, merge.Dropped, merge.Failed)
			log.Printf("[Storefront] Cart now %s: %d items, subtotal %d", cartMgr.State(), cartMgr.Count(), cartMgr.Subtotal())
		}
	}

	log.Println("[Storefront] Done")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
