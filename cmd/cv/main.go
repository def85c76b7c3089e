package main

import (
	"log"

	"contextvault/cmd/cv/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
