package main

import (
	"log"
	"os"

	"github.com/0x3st/quizit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}
