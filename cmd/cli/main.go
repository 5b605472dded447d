package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "suivicaisse-cli",
		Short: "Suivi-Caisse CLI tool",
		Long:  `A command line interface for interacting with the Suivi-Caisse API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Suivi-Caisse API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(chargesCmd())
	rootCmd.AddCommand(caisseCmd())
	rootCmd.AddCommand(depensesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func chargesCmd() *cobra.Command {
	var clientID string
	var year int

	cmd := &cobra.Command{
		Use:   "charges",
		Short: "Client charge operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's charges for a year",
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			if year > 0 {
				query.Set("annee", fmt.Sprintf("%d", year))
			}
			getJSON(fmt.Sprintf("/api/v1/clients/%s/charges", clientID), query, printCharges)
		},
	}

	balancesCmd := &cobra.Command{
		Use:   "balances",
		Short: "Show the running balances of a client's year",
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			if year > 0 {
				query.Set("annee", fmt.Sprintf("%d", year))
			}
			getJSON(fmt.Sprintf("/api/v1/clients/%s/charges/balances", clientID), query, printBalances)
		},
	}

	for _, c := range []*cobra.Command{listCmd, balancesCmd} {
		c.Flags().StringVar(&clientID, "client", "", "Client ID")
		c.Flags().IntVar(&year, "annee", 0, "Year (defaults to current year)")
		_ = c.MarkFlagRequired("client")
		cmd.AddCommand(c)
	}

	return cmd
}

func caisseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caisse",
		Short: "Cash register operations",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the cash register operations and balance",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/caisse/", nil, printCaisse)
		},
	}

	var opType, sign, montant, commentaire string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a cash register operation",
		Run: func(cmd *cobra.Command, args []string) {
			payload := map[string]any{
				"type_operation": opType,
				"montant":        montant,
			}
			if sign != "" {
				payload["operation_sign"] = sign
			}
			if commentaire != "" {
				payload["commentaire"] = commentaire
			}
			postJSON("/api/v1/caisse/", payload, func(result map[string]any) {
				if op, ok := result["operation"].(map[string]any); ok {
					fmt.Printf("Recorded operation %s (%s %s)\n", op["id"], op["operation_sign"], op["montant"])
				}
			})
		},
	}
	addCmd.Flags().StringVar(&opType, "type", "", "Operation type: deposit, withdrawal or other")
	addCmd.Flags().StringVar(&sign, "sign", "", "Sign for 'other' operations: plus or minus")
	addCmd.Flags().StringVar(&montant, "montant", "", "Amount")
	addCmd.Flags().StringVar(&commentaire, "commentaire", "", "Comment")
	_ = addCmd.MarkFlagRequired("type")
	_ = addCmd.MarkFlagRequired("montant")

	var chargeID string
	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw a charge's amount from the cash register",
		Run: func(cmd *cobra.Command, args []string) {
			postJSON(fmt.Sprintf("/api/v1/charges/%s/withdraw", chargeID), nil, func(result map[string]any) {
				if already, ok := result["deja_effectue"].(bool); ok && already {
					fmt.Println("Withdrawal already performed for this charge")
					return
				}
				if op, ok := result["operation"].(map[string]any); ok {
					fmt.Printf("Withdrew %s (operation %s)\n", op["montant"], op["id"])
				}
			})
		},
	}
	withdrawCmd.Flags().StringVar(&chargeID, "charge", "", "Charge ID")
	_ = withdrawCmd.MarkFlagRequired("charge")

	var interval time.Duration
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the cash register and reprint it on an interval",
		Run: func(cmd *cobra.Command, args []string) {
			for {
				getJSON("/api/v1/caisse/", nil, printCaisse)
				fmt.Println()
				time.Sleep(interval)
			}
		},
	}
	watchCmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Polling interval")

	cmd.AddCommand(showCmd)
	cmd.AddCommand(addCmd)
	cmd.AddCommand(withdrawCmd)
	cmd.AddCommand(watchCmd)

	return cmd
}

func depensesCmd() *cobra.Command {
	var depType string
	var year, month int

	cmd := &cobra.Command{
		Use:   "depenses",
		Short: "Expense ledger operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List expense postings",
		Run: func(cmd *cobra.Command, args []string) {
			query := url.Values{}
			if depType != "" {
				query.Set("type", depType)
			}
			if year > 0 {
				query.Set("annee", fmt.Sprintf("%d", year))
			}
			if month > 0 {
				query.Set("mois", fmt.Sprintf("%d", month))
			}
			getJSON("/api/v1/depenses/", query, printDepenses)
		},
	}
	listCmd.Flags().StringVar(&depType, "type", "", "Ledger: client or bureau")
	listCmd.Flags().IntVar(&year, "annee", 0, "Year filter")
	listCmd.Flags().IntVar(&month, "mois", 0, "Month filter (1-12)")

	cmd.AddCommand(listCmd)

	return cmd
}

func getJSON(path string, query url.Values, print func(map[string]any)) {
	endpoint := baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(endpoint)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	handleResponse(resp, print)
}

func postJSON(path string, payload map[string]any, print func(map[string]any)) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Error encoding request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader([]byte("{}"))
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", body)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	handleResponse(resp, print)
}

func handleResponse(resp *http.Response, print func(map[string]any)) {
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(raw))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	print(result)
}

func printCharges(result map[string]any) {
	charges, _ := result["charges"].([]any)
	fmt.Printf("%d charge(s)\n", len(charges))
	for _, c := range charges {
		charge, ok := c.(map[string]any)
		if !ok {
			continue
		}
		fmt.Printf("  %s  %s  %-30s  montant=%s avance=%s\n",
			charge["id"], charge["date"], charge["libelle"], charge["montant"], charge["avance"])
	}
}

func printBalances(result map[string]any) {
	rows, _ := result["rows"].([]any)
	for _, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		marker := " "
		if report, ok := row["report"].(bool); ok && report {
			marker = "R"
		}
		fmt.Printf("  %s %s  solde=%s\n", marker, row["charge_id"], row["solde"])
	}
	fmt.Printf("Solde final: %s\n", result["solde_final"])
}

func printCaisse(result map[string]any) {
	ops, _ := result["operations"].([]any)
	fmt.Printf("%d operation(s)\n", len(ops))
	for _, o := range ops {
		op, ok := o.(map[string]any)
		if !ok {
			continue
		}
		fmt.Printf("  %s  %-10s %-5s %s  %s\n",
			op["id"], op["type_operation"], op["operation_sign"], op["montant"], op["commentaire"])
	}
	fmt.Printf("Solde actuel: %s\n", result["solde_actuel"])
}

func printDepenses(result map[string]any) {
	depenses, _ := result["depenses"].([]any)
	fmt.Printf("%d depense(s)\n", len(depenses))
	for _, d := range depenses {
		dep, ok := d.(map[string]any)
		if !ok {
			continue
		}
		fmt.Printf("  %s  %s  %-7s %-25s %s\n",
			dep["id"], dep["date"], dep["type"], dep["beneficiaire"], dep["montant"])
	}
}
