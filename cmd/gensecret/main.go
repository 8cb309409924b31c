// Prints a random hex string suitable for the SECRET_KEY setting
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

// Bytes of entropy before hex encoding
const keyLen = 32

func main() {
	key := make([]byte, keyLen)
	if _, err := rand.Read(key); err != nil {
		fmt.Fprintf(os.Stderr, "cant generate secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(key))
}
