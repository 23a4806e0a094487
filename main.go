package main

import (
	"log"

	"github.com/campusgate/admissions-api/app"
)

func main() {
	if err := app.SetupAndRunServer(); err != nil {
		log.Fatal(err)
	}
}
