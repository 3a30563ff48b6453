package main

import (
	"log"

	"github.com/campuskit/tokenauth/app"
)

func main() {
	application, err := app.NewApp().WithAutoConfig().Build()
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	application.Run()
}
