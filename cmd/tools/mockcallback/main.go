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
)

type depositCallback struct {
	DepositID     string `json:"depositId"`
	Status        string `json:"status"`
	FailureReason string `json:"failureReason,omitempty"`
	Created       string `json:"created,omitempty"`
	LastUpdatedAt string `json:"lastUpdatedAt,omitempty"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/webhooks/deposits", "Webhook URL")
	depositID := flag.String("deposit-id", "dep_"+randomHex(8), "Deposit ID")
	status := flag.String("status", "COMPLETED", "Provider status (SUBMITTED, ACCEPTED, COMPLETED, FAILED, REJECTED, CANCELLED)")
	reason := flag.String("reason", "", "Failure reason (for FAILED/REJECTED)")
	repeat := flag.Int("repeat", 1, "Send the callback N times (duplicate-delivery testing)")
	dryRun := flag.Bool("dry-run", false, "Only print payload, don't send")

	flag.Parse()

	now := time.Now().UTC().Format(time.RFC3339)
	payload := depositCallback{
		DepositID:     *depositID,
		Status:        *status,
		FailureReason: *reason,
		Created:       now,
		LastUpdatedAt: now,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	for i := 0; i < *repeat; i++ {
		fmt.Printf("\nSending to %s (attempt %d/%d)...\n", *url, i+1, *repeat)
		resp, err := http.Post(*url, "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
			os.Exit(1)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		fmt.Printf("Status: %d\n", resp.StatusCode)
		fmt.Printf("Response: %s\n", string(respBody))

		if resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = "0123456789abcdef"[time.Now().UnixNano()%16]
	}
	return string(b)
}
