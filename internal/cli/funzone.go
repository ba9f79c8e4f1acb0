package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

// ─── Fun-Zone Commands ──────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(spinCmd)
	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(funzoneStatusCmd)
}

type rewardReply struct {
	OK        bool  `json:"ok"`
	Remaining int   `json:"remaining"`
	Value     int64 `json:"value"`
	Balance   struct {
		Balance int64 `json:"balance"`
	} `json:"balance"`
}

var spinCmd = &cobra.Command{
	Use:   "spin",
	Short: "Spin the reward wheel",
	RunE:  runSpin,
}

func runSpin(cmd *cobra.Command, args []string) error {
	var out rewardReply
	if err := callDaemon(http.MethodPost, "/api/funzone/spin", nil, &out); err != nil {
		return err
	}
	if !out.OK {
		fmt.Fprintln(os.Stdout, "No spins left today — come back tomorrow.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "You won %d RBX! (%d spins left, balance %d)\n",
		out.Value, out.Remaining, out.Balance.Balance)
	return nil
}

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Claim the daily check-in reward",
	RunE:  runCheckin,
}

func runCheckin(cmd *cobra.Command, args []string) error {
	var out rewardReply
	if err := callDaemon(http.MethodPost, "/api/funzone/checkin", nil, &out); err != nil {
		return err
	}
	if !out.OK {
		fmt.Fprintln(os.Stdout, "Already checked in today.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "Checked in: +%d RBX (balance %d)\n", out.Value, out.Balance.Balance)
	return nil
}

var funzoneStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show remaining daily activities",
	RunE:  runFunzoneStatus,
}

func runFunzoneStatus(cmd *cobra.Command, args []string) error {
	var out map[string]int
	if err := callDaemon(http.MethodGet, "/api/funzone/status", nil, &out); err != nil {
		return err
	}

	order := []struct{ key, label string }{
		{"spin", "Spins"},
		{"scratch", "Scratch cards"},
		{"video", "Videos"},
		{"login", "Check-in"},
		{"share", "Shares"},
	}
	for _, row := range order {
		fmt.Fprintf(os.Stdout, "%-14s %d left\n", row.label+":", out[row.key])
	}
	return nil
}
