// One-off: go run scripts/genhash.go <passcode>
// Prints an AUTH_PASSWORD_HASH line for the owner passcode.
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: go run scripts/genhash.go <passcode>")
		os.Exit(2)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	fmt.Printf("AUTH_PASSWORD_HASH='%s'\n", h)
}
