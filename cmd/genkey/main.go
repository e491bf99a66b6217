package main

import (
	"flag"
	"log"

	"raydrip/internal/config"
)

func main() {
	path := flag.String("env", ".env", "env file to update")
	key := flag.String("key", "JWT_SECRET", "variable name for the generated secret")
	flag.Parse()

	if _, err := config.WriteSecret(*path, *key); err != nil {
		log.Fatal(err)
	}
	log.Printf("%s written to %s", *key, *path)
}
