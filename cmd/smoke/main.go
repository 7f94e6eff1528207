// Smoke client: logs in a sample landlord against a running server and
// prints /landlords/me.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:5000/api/v1", "API base URL")
	identifier := flag.String("identifier", "landlord1", "landlord identifier")
	password := flag.String("password", "123456", "landlord password")
	flag.Parse()

	if err := run(*baseURL, *identifier, *password); err != nil {
		fmt.Fprintln(os.Stderr, "err:", err)
		os.Exit(1)
	}
}

func run(baseURL, identifier, password string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client := http.Client{}

	body, _ := json.Marshal(map[string]string{"identifier": identifier, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/landlords/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	var login struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		Message any    `json:"message"`
	}
	err = json.NewDecoder(resp.Body).Decode(&login)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if !login.Success {
		return fmt.Errorf("login failed with %d: %v", resp.StatusCode, login.Message)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/landlords/me", http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+login.Token)
	req.Header.Set("accept", "application/json")
	resp, err = client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	me, _ := io.ReadAll(resp.Body)
	fmt.Println(resp.Status)
	fmt.Println(string(me))
	return nil
}
