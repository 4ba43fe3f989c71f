package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjperalta/fintera-coop/internal/services"
)

type bulkFlags struct {
	cooperativeID uint
	actorID       uint
	exclude       []uint
	method        string
	reference     string
	notes         string
}

func (f *bulkFlags) register(cmd *cobra.Command) {
	cmd.Flags().UintVar(&f.cooperativeID, "cooperative", 0, "Cooperative ID (required)")
	cmd.Flags().UintVar(&f.actorID, "actor", 0, "Member ID of the approving admin (required)")
	cmd.Flags().UintSliceVar(&f.exclude, "exclude", nil, "Member IDs to leave out")
	cmd.Flags().StringVar(&f.method, "method", "", "Payment method recorded on each settlement")
	cmd.Flags().StringVar(&f.reference, "reference", "", "Payment reference recorded on each settlement")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Notes recorded on each settlement")
	_ = cmd.MarkFlagRequired("cooperative")
	_ = cmd.MarkFlagRequired("actor")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newBulkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Bulk settlement runs",
	}
	cmd.AddCommand(newSettleMonthCommand(), newSettleDateCommand())
	return cmd
}

func newSettleMonthCommand() *cobra.Command {
	var (
		flags       bulkFlags
		year, month int
		planID      uint
	)
	cmd := &cobra.Command{
		Use:   "settle-month",
		Short: "Settle every open row due in a calendar month",
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

			req := services.BulkMonthRequest{
				CooperativeID:    flags.cooperativeID,
				Year:             year,
				Month:            month,
				ExcludeMemberIDs: flags.exclude,
				PaymentMethod:    flags.method,
				PaymentReference: optional(flags.reference),
				Notes:            optional(flags.notes),
			}
			if planID != 0 {
				req.PlanID = &planID
			}
			result, err := svcs.Bulk.BulkSettleByMonth(cmd.Context(), req, flags.actorID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "Year")
	cmd.Flags().IntVar(&month, "month", int(time.Now().Month()), "Month (1-12)")
	cmd.Flags().UintVar(&planID, "plan", 0, "Only this plan")
	return cmd
}

func newSettleDateCommand() *cobra.Command {
	var (
		flags     bulkFlags
		planID    uint
		date      string
		noMissing bool
	)
	cmd := &cobra.Command{
		Use:   "settle-date",
		Short: "Settle one plan's rows due on a date",
		Long:  `Subscribers with no row on the date get one first unless --no-missing is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", date)
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			svcs, err := a.services(cmd.Context())
			if err != nil {
				return err
			}

			include := !noMissing
			result, err := svcs.Bulk.BulkSettleByDate(cmd.Context(), services.BulkDateRequest{
				CooperativeID:           flags.cooperativeID,
				PlanID:                  planID,
				Date:                    day,
				ExcludeMemberIDs:        flags.exclude,
				IncludeMissingSchedules: &include,
				PaymentMethod:           flags.method,
				PaymentReference:        optional(flags.reference),
				Notes:                   optional(flags.notes),
			}, flags.actorID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	flags.register(cmd)
	cmd.Flags().UintVar(&planID, "plan", 0, "Plan ID (required)")
	cmd.Flags().StringVar(&date, "date", "", "Due date, YYYY-MM-DD (required)")
	cmd.Flags().BoolVar(&noMissing, "no-missing", false, "Do not create rows for subscribers who lack one")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
