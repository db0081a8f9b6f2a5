package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Drop ledger entries whose calendar events were deleted remotely",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(apiFlag+"/api/reconcile", nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(reconcileCmd)

	streakCmd := &cobra.Command{
		Use:   "streak",
		Short: "Show the current daily completion streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/streak")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(streakCmd)

	missedCmd := &cobra.Command{
		Use:   "missed EVENT_ID",
		Short: "Record a missed review event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := doPostJSON(apiFlag+"/api/missed", map[string]string{"id": args[0]}); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "recorded")
			return nil
		},
	}
	rootCmd.AddCommand(missedCmd)
}
