// Seeds the claim store with demo farmers and pending claims so the
// workbench has something to show in development.
package main

import (
	"bytes"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/agriclaim/review-api/internal/models"
	"github.com/agriclaim/review-api/pkg/config"
	"github.com/agriclaim/review-api/pkg/database"
	"github.com/agriclaim/review-api/pkg/storage"
)

var farmers = []struct {
	name   string
	region string
}{
	{"Asha Patel", "Nashik"},
	{"Ravi Kumar", "Vidarbha"},
	{"Meena Joshi", "Marathwada"},
	{"Suresh Reddy", "Telangana"},
}

var reasons = []string{
	models.ReasonFlood,
	models.ReasonDrought,
	models.ReasonPest,
	models.ReasonHail,
	models.ReasonOther,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close() //nolint:errcheck

	signer := storage.NewURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)
	store, err := storage.NewObjectStore(cfg.Storage.Dir, cfg.Storage.PublicBaseURL, signer)
	if err != nil {
		log.Fatalf("object store: %v", err)
	}

	userIDs := make([]string, 0, len(farmers))
	for _, f := range farmers {
		id := uuid.NewString()
		if _, err := db.Exec(
			`INSERT INTO users (id, name, region, phone) VALUES ($1, $2, $3, $4)`,
			id, f.name, f.region, "",
		); err != nil {
			log.Fatalf("insert user: %v", err)
		}
		userIDs = append(userIDs, id)
	}

	for i := 0; i < 12; i++ {
		id := uuid.NewString()
		userID := userIDs[rand.Intn(len(userIDs))]
		reason := reasons[rand.Intn(len(reasons))]
		submitted := time.Now().UTC().Add(-time.Duration(rand.Intn(72)) * time.Hour)

		imageRef := ""
		if i%2 == 0 {
			imageRef = fmt.Sprintf("claims/%s/photo.jpg", id)
			if err := store.Save(imageRef, bytes.NewReader(placeholderJPEG)); err != nil {
				log.Fatalf("save photo: %v", err)
			}
		}

		var lat, lng interface{}
		if i%3 != 0 {
			lat = 19.0 + rand.Float64()
			lng = 73.0 + rand.Float64()
		}

		if _, err := db.Exec(
			`INSERT INTO claims (id, user_id, reason, status, submitted_at, image_ref, document_refs, gps_latitude, gps_longitude, officer_remarks)
			 VALUES ($1, $2, $3, $4, $5, $6, '{}', $7, $8, '')`,
			id, userID, reason, models.ClaimStatusPending, submitted, imageRef, lat, lng,
		); err != nil {
			log.Fatalf("insert claim: %v", err)
		}
	}

	if _, err := db.Exec(`SELECT pg_notify($1, 'seed')`, cfg.Live.Channel); err != nil {
		log.Fatalf("notify: %v", err)
	}

	log.Printf("seeded %d farmers and 12 claims", len(farmers))
}

// 1x1 grey JPEG, enough for the image pipeline to have bytes to serve.
var placeholderJPEG = []byte{
	0xff, 0xd8, 0xff, 0xdb, 0x00, 0x43, 0x00, 0x08, 0x06, 0x06, 0x07, 0x06, 0x05, 0x08, 0x07, 0x07,
	0x07, 0x09, 0x09, 0x08, 0x0a, 0x0c, 0x14, 0x0d, 0x0c, 0x0b, 0x0b, 0x0c, 0x19, 0x12, 0x13, 0x0f,
	0x14, 0x1d, 0x1a, 0x1f, 0x1e, 0x1d, 0x1a, 0x1c, 0x1c, 0x20, 0x24, 0x2e, 0x27, 0x20, 0x22, 0x2c,
	0x23, 0x1c, 0x1c, 0x28, 0x37, 0x29, 0x2c, 0x30, 0x31, 0x34, 0x34, 0x34, 0x1f, 0x27, 0x39, 0x3d,
	0x38, 0x32, 0x3c, 0x2e, 0x33, 0x34, 0x32, 0xff, 0xc0, 0x00, 0x0b, 0x08, 0x00, 0x01, 0x00, 0x01,
	0x01, 0x01, 0x11, 0x00, 0xff, 0xc4, 0x00, 0x1f, 0x00, 0x00, 0x01, 0x05, 0x01, 0x01, 0x01, 0x01,
	0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06,
	0x07, 0x08, 0x09, 0x0a, 0x0b, 0xff, 0xc4, 0x00, 0x14, 0x10, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0xda, 0x00, 0x08, 0x01, 0x01, 0x00,
	0x00, 0x3f, 0x00, 0x7f, 0xff, 0xd9,
}
