package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"farm-planner/internal/plan"
	"farm-planner/internal/report"
)

var (
	plantingIn    plan.PlantingInput
	composeDraft  string
	composeSource string
	composeNotes  string
	approverName  string
	approverToken string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage planting plans and final plans",
}

var planAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a planting plan",
	Args:  cobra.NoArgs,
	RunE:  addPlantingPlan,
}

var planComposeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose a final plan from a planting plan and a reviewed draft",
	Args:  cobra.NoArgs,
	RunE:  composeFinalPlan,
}

var planApproveCmd = &cobra.Command{
	Use:   "approve <final-plan-id>",
	Short: "Approve a final plan",
	Args:  cobra.ExactArgs(1),
	RunE:  decideFinalPlan(true),
}

var planRejectCmd = &cobra.Command{
	Use:   "reject <final-plan-id>",
	Short: "Reject a final plan",
	Args:  cobra.ExactArgs(1),
	RunE:  decideFinalPlan(false),
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List planting plans and final plans",
	Args:  cobra.NoArgs,
	RunE:  listPlans,
}

func init() {
	f := planAddCmd.Flags()
	f.StringVar(&plantingIn.Name, "name", "", "Plan name (required)")
	f.StringVar(&plantingIn.CropType, "crop", "", "Crop type (required)")
	f.Float64Var(&plantingIn.RequiredLandArea, "area", 0, "Required land area in hectares (required)")
	f.StringVar(&plantingIn.PlannedPlantingDate, "date", "", "Planned planting date (YYYY-MM-DD)")
	f.Float64Var(&plantingIn.EstimatedCost, "cost", 0, "Estimated cost")

	planComposeCmd.Flags().StringVar(&composeSource, "planting", "", "Planting plan id (required)")
	planComposeCmd.Flags().StringVar(&composeDraft, "draft", "", "Verified or approved draft id (required)")
	planComposeCmd.Flags().StringVar(&composeNotes, "notes", "", "Approval notes (required)")
	planComposeCmd.MarkFlagRequired("planting")
	planComposeCmd.MarkFlagRequired("draft")

	for _, c := range []*cobra.Command{planApproveCmd, planRejectCmd} {
		c.Flags().StringVar(&approverName, "approver", "", "Approver name, used when approver tokens are disabled")
		c.Flags().StringVar(&approverToken, "token", "", "Approver token, required when APPROVER_SECRET is set")
	}

	planCmd.AddCommand(planAddCmd)
	planCmd.AddCommand(planComposeCmd)
	planCmd.AddCommand(planApproveCmd)
	planCmd.AddCommand(planRejectCmd)
	planCmd.AddCommand(planListCmd)
}

func addPlantingPlan(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	p, err := application.AddPlantingPlan(ctx, plantingIn)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added planting plan %s\n", p.ID)
	return nil
}

func composeFinalPlan(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	f, err := application.ComposeFinalPlan(ctx, composeSource, composeDraft, composeNotes)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Composed final plan %s (%s)\n", f.ID, f.Status)
	return nil
}

func decideFinalPlan(approve bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		decide := application.RejectFinalPlan
		if approve {
			decide = application.ApproveFinalPlan
		}
		f, err := decide(ctx, args[0], approverToken, approverName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Final plan %s is %s by %s\n", f.ID, f.Status, f.ApprovedBy)
		return nil
	}
}

func listPlans(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	planting, err := application.PlantingPlans(ctx)
	if err != nil {
		return err
	}
	final, err := application.FinalPlans(ctx)
	if err != nil {
		return err
	}
	md := "# Planting plans\n\n" + report.PlantingTable(planting) + "\n# Final plans\n\n" + report.FinalPlanTable(final)
	return printMarkdown(cmd, md)
}
