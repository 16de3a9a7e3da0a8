package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"farm-planner/internal/draft"
	"farm-planner/internal/drafting"
	"farm-planner/internal/report"
)

var (
	draftPrompt   drafting.Prompt
	draftStatuses []string
	verifiedText  string
	verifiedFile  string
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Generate and review requirements drafts",
}

var draftGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a requirements draft for a crop and land area",
	Args:  cobra.NoArgs,
	RunE:  generateDraft,
}

var draftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafts",
	Args:  cobra.NoArgs,
	RunE:  listDrafts,
}

var draftShowCmd = &cobra.Command{
	Use:   "show <draft-id>",
	Short: "Show a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  showDraft,
}

var draftVerifyCmd = &cobra.Command{
	Use:   "verify <draft-id>",
	Short: "Store the reviewed text of a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  verifyDraft,
}

var draftApproveCmd = &cobra.Command{
	Use:   "approve <draft-id>",
	Short: "Approve a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  approveDraft,
}

var draftRejectCmd = &cobra.Command{
	Use:   "reject <draft-id>",
	Short: "Reject a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  rejectDraft,
}

var draftDeleteCmd = &cobra.Command{
	Use:   "delete <draft-id>",
	Short: "Delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteDraft,
}

func init() {
	f := draftGenerateCmd.Flags()
	f.StringVar(&draftPrompt.CropType, "crop", "", "Crop type (required)")
	f.Float64Var(&draftPrompt.LandArea, "area", 0, "Land area in hectares (required)")
	f.StringVar(&draftPrompt.SoilType, "soil", "", "Soil type")
	f.StringVar(&draftPrompt.Season, "season", "", "Planting season")
	f.StringVar(&draftPrompt.Location, "location", "", "Location")

	draftListCmd.Flags().StringSliceVar(&draftStatuses, "status", nil, "Only drafts in these states")

	draftVerifyCmd.Flags().StringVar(&verifiedText, "text", "", "Reviewed draft text")
	draftVerifyCmd.Flags().StringVar(&verifiedFile, "file", "", "Read the reviewed draft text from a file")
	draftVerifyCmd.MarkFlagsMutuallyExclusive("text", "file")
	draftVerifyCmd.MarkFlagsOneRequired("text", "file")

	draftCmd.AddCommand(draftGenerateCmd)
	draftCmd.AddCommand(draftListCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftVerifyCmd)
	draftCmd.AddCommand(draftApproveCmd)
	draftCmd.AddCommand(draftRejectCmd)
	draftCmd.AddCommand(draftDeleteCmd)
}

func generateDraft(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	d, err := application.GenerateDraft(ctx, draftPrompt)
	if err != nil {
		return err
	}
	return printMarkdown(cmd, report.DraftMarkdown(d))
}

func listDrafts(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	statuses := make([]draft.Status, 0, len(draftStatuses))
	for _, s := range draftStatuses {
		st := draft.Status(s)
		if !st.Valid() {
			return fmt.Errorf("unknown draft status %q", s)
		}
		statuses = append(statuses, st)
	}
	drafts, err := application.Drafts(ctx, statuses...)
	if err != nil {
		return err
	}
	return printMarkdown(cmd, report.DraftTable(drafts))
}

func showDraft(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	d, err := application.Draft(ctx, args[0])
	if err != nil {
		return err
	}
	return printMarkdown(cmd, report.DraftMarkdown(d))
}

func verifyDraft(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	text := verifiedText
	if verifiedFile != "" {
		data, err := os.ReadFile(verifiedFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", verifiedFile, err)
		}
		text = string(data)
	}
	d, err := application.VerifyDraft(ctx, args[0], text)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Draft %s is %s\n", d.ID, d.Status)
	return nil
}

func approveDraft(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	d, err := application.ApproveDraft(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Draft %s is %s\n", d.ID, d.Status)
	return nil
}

func rejectDraft(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	d, err := application.RejectDraft(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Draft %s is %s\n", d.ID, d.Status)
	return nil
}

func deleteDraft(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := application.DeleteDraft(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted draft %s\n", args[0])
	return nil
}
