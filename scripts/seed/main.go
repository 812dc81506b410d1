package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type seedFile struct {
	Teachers   []json.RawMessage `json:"teachers"`
	Classrooms []json.RawMessage `json:"classrooms"`
	Batch      json.RawMessage   `json:"batch"`
}

func main() {
	var (
		baseURL  string
		seedPath string
		token    string
		timeout  time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&seedPath, "seed", filepath.Join("scripts", "seed", "seed.json"), "Path to JSON seed file")
	flag.StringVar(&token, "token", os.Getenv("SEED_TOKEN"), "Bearer token for write endpoints")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	seed, err := loadSeed(seedPath)
	if err != nil {
		log.Fatalf("failed to load seed file: %v", err)
	}

	client := &http.Client{Timeout: timeout}

	for i, teacher := range seed.Teachers {
		if err := post(client, baseURL+"/api/v1/teachers", token, teacher); err != nil {
			log.Fatalf("teacher %d: %v", i, err)
		}
	}
	for i, classroom := range seed.Classrooms {
		if err := post(client, baseURL+"/api/v1/classrooms", token, classroom); err != nil {
			log.Fatalf("classroom %d: %v", i, err)
		}
	}
	fmt.Printf("seeded %d teachers, %d classrooms\n", len(seed.Teachers), len(seed.Classrooms))

	if len(seed.Batch) == 0 {
		return
	}
	if err := post(client, baseURL+"/api/v1/schedules/assign", token, seed.Batch); err != nil {
		log.Fatalf("assignment batch: %v", err)
	}
	fmt.Println("assignment batch submitted")
}

func loadSeed(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

func post(client *http.Client, url, token string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, payload)
	}
	return nil
}
