package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/erazemk/gifgrab/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
