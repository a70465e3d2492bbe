package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// ----------------------------------------------------------------------------
// Config ---------------------------------------------------------------------
var (
	baseURL = flag.String("url", env("API_BASE_URL", "http://localhost:8080"), "Server base URL")
	email   = flag.String("email", env("EMAIL", "demo@example.com"), "User e-mail")
	pass    = flag.String("pass", env("PASSWORD", "longenough1"), "User password")
	nNotes  = flag.Int("n", envInt("COUNT", 200), "How many notes to create")
)

var priorities = []string{"low", "medium", "high"}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		i, err := fmt.Sscan(v, &i)
		if err != nil {
			return def
		}
		if i > 0 {
			return i
		}
	}
	return def
}

// ----------------------------------------------------------------------------
// HTTP helpers ---------------------------------------------------------------
func postJSON(path string, body any, hdr map[string]string) (*http.Response, error) {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	return http.DefaultClient.Do(req)
}

func getJSON(path string, hdr map[string]string) (*http.Response, error) {
	req, _ := http.NewRequest(http.MethodGet, *baseURL+path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	return http.DefaultClient.Do(req)
}

func must(body io.ReadCloser) []byte {
	defer body.Close()
	data, _ := io.ReadAll(body)
	return data
}

// ----------------------------------------------------------------------------
// Main -----------------------------------------------------------------------
func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	fmt.Printf("Seed account %s (notes=%d) on %s\n", *email, *nNotes, *baseURL)

	token, err := ensureUser()
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	categoryIDs, err := loadCategories(token)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	if err := createNotes(token, categoryIDs, *nNotes); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	fmt.Println("✔ done")
}

// ----------------------------------------------------------------------------
// Step 1 – make sure the user exists -----------------------------------------
func ensureUser() (string, error) {
	payload := map[string]string{"email": *email, "password": *pass}

	// Try sign-up first …
	if resp, err := postJSON("/api/v1/auth/sign-up", payload, nil); err == nil && resp.StatusCode < 300 {
		var r struct {
			Access string `json:"access"`
		}
		_ = json.Unmarshal(must(resp.Body), &r)
		fmt.Println("• signed-up new user")
		return r.Access, nil
	}

	// … otherwise fall back to sign-in.
	resp, err := postJSON("/api/v1/auth/sign-in", payload, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign-in failed (%d): %s", resp.StatusCode, must(resp.Body))
	}
	var r struct {
		Access string `json:"access"`
	}
	_ = json.Unmarshal(must(resp.Body), &r)
	fmt.Println("• signed-in existing user")
	return r.Access, nil
}

// ----------------------------------------------------------------------------
// Step 2 – collect the user's categories --------------------------------------
func loadCategories(token string) ([]string, error) {
	h := map[string]string{"Authorization": "Bearer " + token}

	resp, err := getJSON("/api/v1/categories", h)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list categories failed (%d): %s", resp.StatusCode, must(resp.Body))
	}

	var r struct {
		Categories []struct {
			ID string `json:"id"`
		} `json:"categories"`
	}
	_ = json.Unmarshal(must(resp.Body), &r)

	ids := make([]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		ids = append(ids, c.ID)
	}
	fmt.Printf("• %d categories available\n", len(ids))
	return ids, nil
}

// ----------------------------------------------------------------------------
// Step 3 – create notes -------------------------------------------------------
func createNotes(token string, categoryIDs []string, total int) error {
	h := map[string]string{"Authorization": "Bearer " + token}

	for i := 1; i <= total; i++ {
		note := map[string]any{
			"title":    gofakeit.Sentence(3),
			"content":  gofakeit.Paragraph(1, 3, 40, " "),
			"priority": priorities[gofakeit.Number(0, 2)],
			"tags":     gofakeit.Word() + ", " + gofakeit.Word(),
		}
		if gofakeit.Bool() && len(categoryIDs) > 0 {
			note["category"] = categoryIDs[gofakeit.Number(0, len(categoryIDs)-1)]
		}
		if gofakeit.Number(0, 9) == 0 {
			note["is_pinned"] = true
		}
		if gofakeit.Number(0, 9) == 0 {
			note["is_archived"] = true
		}

		resp, err := postJSON("/api/v1/notes", note, h)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("create note %d failed (%d): %s", i, resp.StatusCode, must(resp.Body))
		}

		if i%50 == 0 || i == total {
			fmt.Printf("  … %d/%d\n", i, total)
		}
	}
	return nil
}
