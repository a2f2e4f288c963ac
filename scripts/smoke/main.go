// Package main runs a smoke test against a running clinic-tools server.
//
// It checks /health, lists the registered tools and invokes each one with a
// sample patient. SMS is only attempted when --sms-to is given.
//
// Usage:
//
//	go run ./scripts/smoke [--api=URL] [--secret=SECRET] [--sms-to=PHONE]
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	flagAPI    string
	flagSecret string
	flagSMSTo  string
)

func init() {
	flag.StringVar(&flagAPI, "api", "http://127.0.0.1:8000", "API base URL")
	flag.StringVar(&flagSecret, "secret", "", "Tools JWT secret (or TOOLS_JWT_SECRET env)")
	flag.StringVar(&flagSMSTo, "sms-to", "", "Destination for send_appointment_sms; skipped when empty")
}

type check struct {
	name   string
	pass   bool
	detail string
}

var client = &http.Client{Timeout: 30 * time.Second}

func main() {
	flag.Parse()
	if flagSecret == "" {
		flagSecret = os.Getenv("TOOLS_JWT_SECRET")
	}
	api := strings.TrimRight(flagAPI, "/")

	token, err := bearerToken(flagSecret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(2)
	}

	var checks []check
	checks = append(checks, expectStatus("health", http.MethodGet, api+"/health", "", "", http.StatusOK))
	checks = append(checks, expectStatus("list tools", http.MethodGet, api+"/tools", "", token, http.StatusOK))

	checks = append(checks, invokeTool(api, token, "queue_appointment", map[string]any{
		"patient_name":     "Smoke Test",
		"age":              30,
		"gender":           "F",
		"phone_number":     "98765 43210",
		"issue":            "routine check-up",
		"appointment_time": "tomorrow 10 AM",
	}, "success"))

	checks = append(checks, invokeTool(api, token, "generate_health_record", map[string]any{
		"patient_name":       "Smoke Test",
		"age":                30,
		"gender":             "F",
		"phone_number":       "98765 43210",
		"symptoms":           "none",
		"duration":           "n/a",
		"chronic_conditions": "none",
		"family_history":     "none",
		"diagnosis":          "healthy",
		"prescriptions":      "none",
	}, "success"))

	if flagSMSTo != "" {
		checks = append(checks, invokeTool(api, token, "send_appointment_sms", map[string]any{
			"phone_number":     flagSMSTo,
			"patient_name":     "Smoke Test",
			"appointment_time": "tomorrow 10 AM",
		}, "sent"))
	}

	checks = append(checks, expectStatus("unknown tool", http.MethodPost, api+"/tools/does_not_exist", "{}", token, http.StatusNotFound))

	failed := 0
	for _, c := range checks {
		mark := "PASS"
		if !c.pass {
			mark = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %-24s %s\n", mark, c.name, c.detail)
	}
	if failed > 0 {
		fmt.Printf("\n%d of %d checks failed\n", failed, len(checks))
		os.Exit(1)
	}
	fmt.Printf("\nall %d checks passed\n", len(checks))
}

func bearerToken(secret string) (string, error) {
	if secret == "" {
		return "", nil
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "smoke-test",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func do(method, url, body, token string) (int, []byte, error) {
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return resp.StatusCode, data, err
}

func expectStatus(name, method, url, body, token string, want int) check {
	status, _, err := do(method, url, body, token)
	if err != nil {
		return check{name: name, detail: err.Error()}
	}
	return check{name: name, pass: status == want, detail: fmt.Sprintf("status %d (want %d)", status, want)}
}

func invokeTool(api, token, tool string, args map[string]any, wantStatus string) check {
	payload, err := json.Marshal(args)
	if err != nil {
		return check{name: tool, detail: err.Error()}
	}
	status, data, err := do(http.MethodPost, api+"/tools/"+tool, string(payload), token)
	if err != nil {
		return check{name: tool, detail: err.Error()}
	}
	if status != http.StatusOK {
		return check{name: tool, detail: fmt.Sprintf("status %d: %s", status, strings.TrimSpace(string(data)))}
	}
	var res struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return check{name: tool, detail: "decode: " + err.Error()}
	}
	detail := res.Message
	if res.Path != "" {
		detail += " (" + res.Path + ")"
	}
	return check{name: tool, pass: res.Status == wantStatus, detail: detail}
}
