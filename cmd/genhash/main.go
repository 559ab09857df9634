package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Small utility to generate bcrypt hashes for seeding users by hand.
//
//	go run ./cmd/genhash <password>
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>")
		os.Exit(1)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), 12)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Println(string(hash))
}
