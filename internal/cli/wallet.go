package cli

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rbxsim/rbxsim/internal/domain"
)

// ─── Wallet Commands ────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(creditCmd)
	rootCmd.AddCommand(debitCmd)
	rootCmd.AddCommand(historyCmd)

	creditCmd.Flags().StringP("description", "d", "", "Description for the transaction")
	debitCmd.Flags().StringP("description", "d", "", "Description for the transaction")
	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show (0 = all)")
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the current RBX balance",
	RunE:  runBalance,
}

func runBalance(cmd *cobra.Command, args []string) error {
	var bal domain.BalanceRecord
	if err := callDaemon(http.MethodGet, "/api/wallet", nil, &bal); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Balance:      %d RBX\n", bal.Balance)
	fmt.Fprintf(os.Stdout, "Daily change: %+d RBX\n", bal.DailyChange)
	if !bal.LastUpdated.IsZero() {
		fmt.Fprintf(os.Stdout, "Last updated: %s\n", bal.LastUpdated.Format("2006-01-02 15:04:05"))
	}
	return nil
}

var creditCmd = &cobra.Command{
	Use:   "credit AMOUNT",
	Short: "Add RBX to the wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredit,
}

var debitCmd = &cobra.Command{
	Use:   "debit AMOUNT",
	Short: "Spend RBX from the wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebit,
}

func runCredit(cmd *cobra.Command, args []string) error {
	return runManualTransaction(cmd, args[0], "/api/wallet/credit")
}

func runDebit(cmd *cobra.Command, args []string) error {
	return runManualTransaction(cmd, args[0], "/api/wallet/debit")
}

func runManualTransaction(cmd *cobra.Command, rawAmount, path string) error {
	amount, err := strconv.ParseInt(rawAmount, 10, 64)
	if err != nil {
		return fmt.Errorf("amount must be an integer: %q", rawAmount)
	}
	description, _ := cmd.Flags().GetString("description")

	body, err := jsonBody(map[string]interface{}{
		"amount":      amount,
		"description": description,
	})
	if err != nil {
		return err
	}

	var resp struct {
		Valid      bool                 `json:"valid"`
		Reason     string               `json:"reason"`
		NewBalance domain.BalanceRecord `json:"new_balance"`
	}
	if err := callDaemon(http.MethodPost, path, body, &resp); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "New balance: %d RBX\n", resp.NewBalance.Balance)
	return nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the transaction history (newest first)",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	var resp struct {
		Transactions []domain.TransactionEntry `json:"transactions"`
		Count        int                       `json:"count"`
	}
	path := fmt.Sprintf("/api/wallet/transactions?limit=%d", limit)
	if err := callDaemon(http.MethodGet, path, nil, &resp); err != nil {
		return err
	}

	if resp.Count == 0 {
		fmt.Fprintln(os.Stdout, "No transactions yet.")
		return nil
	}

	for _, e := range resp.Transactions {
		sign := "+"
		if e.Kind == domain.EntryDebit {
			sign = "-"
		}
		fmt.Fprintf(os.Stdout, "%s  %s%-8d %-30s balance %d\n",
			e.Timestamp.Format("2006-01-02 15:04"), sign, e.Amount, e.Description, e.BalanceAfter)
	}
	return nil
}
