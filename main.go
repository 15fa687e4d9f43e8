package main

import (
	"log"

	"github.com/thiagokokada/vcs-go/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("vcs-go: %v", err)
	}
}
