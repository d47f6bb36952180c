package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Generates a sample gzipped discount code listing for local development.
// Any code present in the file passes registry validation.
func main() {
	dataDir := "data/discounts"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	codes := []string{
		"SUMMER10",
		"WINTER20",
		"SPRING30",
		"FREESHIP",
		"VIPDEAL",
		"SAVE25",
		"WELCOME5",
	}

	path := filepath.Join(dataDir, "codes.gz")

	file, err := os.Create(path)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", path, err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	defer gz.Close()

	for _, code := range codes {
		if _, err := fmt.Fprintln(gz, code); err != nil {
			log.Fatalf("Failed to write code: %v", err)
		}
	}

	fmt.Printf("Wrote %d discount codes to %s\n", len(codes), path)
}
