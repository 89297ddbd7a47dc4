package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusduel/internal/model"
	"campusduel/internal/repository"
)

func intPtr(v int) *int { return &v }

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "campusduel"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(dbName)
	locationRepo := repository.NewLocationRepo(db)

	// Coordinates are normalized campus-map units in [0,1].
	locations := []*model.Location{
		{
			ImageRef:     "photos/main-quad-fountain.jpg",
			TrueLocation: model.Point{X: 0.512, Y: 0.448},
		},
		{
			ImageRef:     "photos/clock-tower-base.jpg",
			TrueLocation: model.Point{X: 0.497, Y: 0.391},
		},
		{
			ImageRef:        "photos/library-reading-room.jpg",
			TrueLocation:    model.Point{X: 0.430, Y: 0.365},
			TrueFloor:       intPtr(3),
			AvailableFloors: []int{0, 1, 2, 3, 4},
		},
		{
			ImageRef:        "photos/library-stacks-basement.jpg",
			TrueLocation:    model.Point{X: 0.433, Y: 0.372},
			TrueFloor:       intPtr(0),
			AvailableFloors: []int{0, 1, 2, 3, 4},
		},
		{
			ImageRef:     "photos/engineering-courtyard.jpg",
			TrueLocation: model.Point{X: 0.681, Y: 0.302},
		},
		{
			ImageRef:        "photos/engineering-lab-corridor.jpg",
			TrueLocation:    model.Point{X: 0.674, Y: 0.289},
			TrueFloor:       intPtr(2),
			AvailableFloors: []int{1, 2, 3},
		},
		{
			ImageRef:     "photos/student-union-steps.jpg",
			TrueLocation: model.Point{X: 0.558, Y: 0.523},
		},
		{
			ImageRef:        "photos/union-food-court.jpg",
			TrueLocation:    model.Point{X: 0.561, Y: 0.531},
			TrueFloor:       intPtr(1),
			AvailableFloors: []int{1, 2},
		},
		{
			ImageRef:     "photos/gym-entrance.jpg",
			TrueLocation: model.Point{X: 0.212, Y: 0.640},
		},
		{
			ImageRef:     "photos/stadium-north-gate.jpg",
			TrueLocation: model.Point{X: 0.155, Y: 0.712},
		},
		{
			ImageRef:        "photos/science-hall-atrium.jpg",
			TrueLocation:    model.Point{X: 0.604, Y: 0.410},
			TrueFloor:       intPtr(1),
			AvailableFloors: []int{1, 2, 3, 4, 5},
		},
		{
			ImageRef:        "photos/science-hall-rooftop-greenhouse.jpg",
			TrueLocation:    model.Point{X: 0.607, Y: 0.405},
			TrueFloor:       intPtr(5),
			AvailableFloors: []int{1, 2, 3, 4, 5},
		},
		{
			ImageRef:     "photos/arts-building-mural.jpg",
			TrueLocation: model.Point{X: 0.388, Y: 0.486},
		},
		{
			ImageRef:     "photos/botanical-garden-bridge.jpg",
			TrueLocation: model.Point{X: 0.742, Y: 0.611},
		},
		{
			ImageRef:     "photos/north-dorms-bike-racks.jpg",
			TrueLocation: model.Point{X: 0.475, Y: 0.178},
		},
		{
			ImageRef:        "photos/dorm-c-common-room.jpg",
			TrueLocation:    model.Point{X: 0.482, Y: 0.170},
			TrueFloor:       intPtr(2),
			AvailableFloors: []int{1, 2, 3, 4},
		},
		{
			ImageRef:     "photos/lecture-hall-west-entrance.jpg",
			TrueLocation: model.Point{X: 0.342, Y: 0.412},
		},
		{
			ImageRef:     "photos/campus-bookstore-window.jpg",
			TrueLocation: model.Point{X: 0.540, Y: 0.560},
		},
		{
			ImageRef:     "photos/observatory-path.jpg",
			TrueLocation: model.Point{X: 0.870, Y: 0.142},
		},
		{
			ImageRef:        "photos/parking-garage-level-3.jpg",
			TrueLocation:    model.Point{X: 0.280, Y: 0.250},
			TrueFloor:       intPtr(3),
			AvailableFloors: []int{1, 2, 3, 4},
		},
	}

	inserted := 0
	for _, loc := range locations {
		if err := locationRepo.Create(ctx, loc); err != nil {
			log.Fatalf("Failed to insert location %s: %v", loc.ImageRef, err)
		}
		inserted++
	}

	fmt.Printf("Successfully seeded %d catalog locations into %q\n", inserted, dbName)
}
