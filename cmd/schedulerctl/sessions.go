package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	sessionsCmd := &cobra.Command{Use: "sessions", Short: "Session ledger operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/sessions")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	sessionsCmd.AddCommand(listCmd)

	showCmd := &cobra.Command{
		Use:   "show SESSION_ID",
		Short: "Show one session with its sub-events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/sessions/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	sessionsCmd.AddCommand(showCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete SESSION_ID",
		Short: "Delete a session's calendar events and its ledger entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := doDelete(apiFlag + "/api/sessions/" + args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "deleted")
			return nil
		},
	}
	sessionsCmd.AddCommand(deleteCmd)

	progressCmd := &cobra.Command{
		Use:   "progress SESSION_ID",
		Short: "Show the completed fraction of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/sessions/" + args[0] + "/progress")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	sessionsCmd.AddCommand(progressCmd)

	rootCmd.AddCommand(sessionsCmd)

	toggleCmd := &cobra.Command{
		Use:   "toggle SESSION_ID SUB_EVENT_ID",
		Short: "Toggle completion of one review event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/sessions/%s/sub-events/%s/toggle", apiFlag, args[0], args[1])
			data, err := doPostJSON(url, nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(toggleCmd)
}
