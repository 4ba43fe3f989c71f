package main

import (
	"github.com/spf13/cobra"
)

func newSchedulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Schedule maintenance",
	}

	var subscriptionID uint
	extend := &cobra.Command{
		Use:   "extend",
		Short: "Top up continuous schedules that are running out",
		Long:  `Without --subscription every active continuous subscription is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			svcs, err := a.services(cmd.Context())
			if err != nil {
				return err
			}

			if subscriptionID != 0 {
				created, err := svcs.Schedule.ExtendSchedules(cmd.Context(), subscriptionID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"subscription_id":   subscriptionID,
					"schedules_created": created,
				})
			}

			summary, err := svcs.Schedule.ExtendAllContinuous(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
	extend.Flags().UintVar(&subscriptionID, "subscription", 0, "Only extend this subscription")

	cmd.AddCommand(extend)
	return cmd
}
