package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/tyler180/bonus-ball-backends/internal/app"
)

func main() {
	log.SetFlags(0)
	a, err := app.FromEnv()
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer a.Log.Sync()
	lambda.Start(a.Ingest.Handle)
}
