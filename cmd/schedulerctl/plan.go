package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func seriesPayload(subject, start, description, horizon string, durationMin int) (map[string]interface{}, error) {
	if subject == "" || start == "" {
		return nil, fmt.Errorf("--subject and --start required")
	}
	payload := map[string]interface{}{
		"subject":      subject,
		"anchor_start": start,
	}
	if durationMin > 0 {
		payload["duration_minutes"] = durationMin
	}
	if description != "" {
		payload["description"] = description
	}
	if horizon != "" {
		payload["horizon"] = horizon
	}
	return payload, nil
}

func addSeriesFlags(cmd *cobra.Command, subject, start, description, horizon *string, durationMin *int) {
	cmd.Flags().StringVarP(subject, "subject", "s", "", "Subject name, e.g. Physics (required)")
	cmd.Flags().StringVar(start, "start", "", "Anchor start time, RFC3339 (required)")
	cmd.Flags().StringVarP(description, "description", "d", "", "Event description")
	cmd.Flags().StringVar(horizon, "horizon", "", "Scheduling horizon, RFC3339")
	cmd.Flags().IntVar(durationMin, "duration", 0, "Event duration in minutes (default from profile)")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("start")
}

func init() {
	// plan
	var planSubject, planStart, planDescription, planHorizon string
	var planDuration int
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview a review series with conflicts and slot suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := seriesPayload(planSubject, planStart, planDescription, planHorizon, planDuration)
			if err != nil {
				return err
			}
			data, err := doPostJSON(apiFlag+"/api/plan", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addSeriesFlags(planCmd, &planSubject, &planStart, &planDescription, &planHorizon, &planDuration)
	rootCmd.AddCommand(planCmd)

	// schedule
	var schedSubject, schedStart, schedDescription, schedHorizon string
	var schedDuration int
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Create the review series on the calendar and record the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := seriesPayload(schedSubject, schedStart, schedDescription, schedHorizon, schedDuration)
			if err != nil {
				return err
			}
			data, err := doPostJSON(apiFlag+"/api/sessions", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	addSeriesFlags(scheduleCmd, &schedSubject, &schedStart, &schedDescription, &schedHorizon, &schedDuration)
	rootCmd.AddCommand(scheduleCmd)

	// suggest
	var suggestStart, suggestEnd string
	var suggestDuration int
	suggestCmd := &cobra.Command{
		Use:   "suggest",
		Short: "List free slots inside a search window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if suggestStart == "" || suggestEnd == "" {
				return fmt.Errorf("--start and --end required")
			}
			q := url.Values{}
			q.Set("start", suggestStart)
			q.Set("end", suggestEnd)
			if suggestDuration > 0 {
				q.Set("duration_minutes", strconv.Itoa(suggestDuration))
			}
			data, err := doGet(apiFlag + "/api/suggestions?" + q.Encode())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	suggestCmd.Flags().StringVar(&suggestStart, "start", "", "Window start, RFC3339 (required)")
	suggestCmd.Flags().StringVar(&suggestEnd, "end", "", "Window end, RFC3339 (required)")
	suggestCmd.Flags().IntVar(&suggestDuration, "duration", 0, "Slot duration in minutes (default from profile)")
	_ = suggestCmd.MarkFlagRequired("start")
	_ = suggestCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(suggestCmd)
}
