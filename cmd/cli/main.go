package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kasledger-cli",
		Short: "KasLedger CLI tool",
		Long:  `A command line interface for interacting with the KasLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the KasLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountCmd())
	rootCmd.AddCommand(monitorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Run: func(cmd *cobra.Command, args []string) {
			listAccounts()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show the balance derived from posted entries",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/accounts/" + args[0] + "/balance")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resync <account-id>",
		Short: "Recompute and rewrite the cached balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/accounts/" + args[0] + "/resync")
		},
	})

	return cmd
}

func monitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Consistency checks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "duplicates",
		Short: "List suspected duplicate posting groups",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/monitor/duplicates")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "orphans",
		Short: "List auto-posted entries whose origin record is gone",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/monitor/orphans")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Summarize auto-posted entries per origin module",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/monitor/summary")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "drift",
		Short: "Report cached balances that disagree with derived ones",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/monitor/drift")
		},
	})

	return cmd
}

func listAccounts() {
	body := request(http.MethodGet, "/api/v1/accounts")

	var resp struct {
		Accounts []struct {
			ID             string `json:"id"`
			Name           string `json:"name"`
			Code           string `json:"code"`
			Status         string `json:"status"`
			CurrentBalance string `json:"current_balance"`
		} `json:"accounts"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tSTATUS\tBALANCE")
	for _, a := range resp.Accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Code, truncate(a.Name, 30), a.Status, a.CurrentBalance)
	}
	w.Flush()
}

func get(path string) {
	printResponse(request(http.MethodGet, path))
}

func post(path string) {
	printResponse(request(http.MethodPost, path))
}

func request(method, path string) []byte {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	return body
}

func printResponse(body []byte) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		fmt.Println(string(body))
		return
	}
	printJSON(data)
}

func printJSON(data any) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Printf("Failed to format response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
