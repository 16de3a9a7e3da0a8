package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"farm-planner/internal/budget"
	"farm-planner/internal/report"
	"farm-planner/internal/validation"
)

var (
	budgetName  string
	budgetCrop  string
	budgetArea  float64
	budgetItems []string
	itemIn      budget.ItemInput
	itemCat     string
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage budget plans",
}

var budgetCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a budget plan",
	Long: `Create a budget plan. Items are given as category:name:quantity:unit-price
with an optional :unit suffix, for example --item seed:IR64:50:12000:kg.
A plan needs at least one item to be saved.`,
	Args: cobra.NoArgs,
	RunE: createBudget,
}

var budgetAddItemCmd = &cobra.Command{
	Use:   "add-item <budget-id>",
	Short: "Add an item to a budget plan",
	Args:  cobra.ExactArgs(1),
	RunE:  addBudgetItem,
}

var budgetUpdateItemCmd = &cobra.Command{
	Use:   "update-item <budget-id> <item-id> <category:name:quantity:unit-price[:unit]>",
	Short: "Replace an item of a budget plan",
	Args:  cobra.ExactArgs(3),
	RunE:  updateBudgetItem,
}

var budgetRemoveItemCmd = &cobra.Command{
	Use:   "remove-item <budget-id> <item-id>",
	Short: "Remove an item from a budget plan",
	Args:  cobra.ExactArgs(2),
	RunE:  removeBudgetItem,
}

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budget plans",
	Args:  cobra.NoArgs,
	RunE:  listBudgets,
}

var budgetShowCmd = &cobra.Command{
	Use:   "show <budget-id>",
	Short: "Show a budget plan with its items",
	Args:  cobra.ExactArgs(1),
	RunE:  showBudget,
}

var budgetDeleteCmd = &cobra.Command{
	Use:   "delete <budget-id>",
	Short: "Delete a budget plan",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteBudget,
}

func init() {
	budgetCreateCmd.Flags().StringVar(&budgetName, "name", "", "Budget name (required)")
	budgetCreateCmd.Flags().StringVar(&budgetCrop, "crop", "", "Crop type (required)")
	budgetCreateCmd.Flags().Float64Var(&budgetArea, "area", 0, "Land area in hectares (required)")
	budgetCreateCmd.Flags().StringArrayVar(&budgetItems, "item", nil, "Budget item category:name:quantity:unit-price[:unit]")

	f := budgetAddItemCmd.Flags()
	f.StringVar(&itemCat, "category", "", "Category: seed, fertilizer, pesticide, equipment, labor, irrigation or other")
	f.StringVar(&itemIn.Name, "name", "", "Item name")
	f.StringVar(&itemIn.Unit, "unit", "", "Unit")
	f.Float64Var(&itemIn.Quantity, "quantity", 0, "Quantity")
	f.Float64Var(&itemIn.UnitPrice, "price", 0, "Unit price")
	f.StringVar(&itemIn.Notes, "notes", "", "Notes")

	budgetCmd.AddCommand(budgetCreateCmd)
	budgetCmd.AddCommand(budgetAddItemCmd)
	budgetCmd.AddCommand(budgetUpdateItemCmd)
	budgetCmd.AddCommand(budgetRemoveItemCmd)
	budgetCmd.AddCommand(budgetListCmd)
	budgetCmd.AddCommand(budgetShowCmd)
	budgetCmd.AddCommand(budgetDeleteCmd)
}

// parseItem reads category:name:quantity:unit-price[:unit].
func parseItem(raw string) (budget.ItemInput, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 4 || len(parts) > 5 {
		return budget.ItemInput{}, validation.New("item", fmt.Sprintf("item %q must look like category:name:quantity:unit-price[:unit]", raw))
	}
	qty, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return budget.ItemInput{}, validation.New("quantity", fmt.Sprintf("invalid quantity %q", parts[2]))
	}
	price, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return budget.ItemInput{}, validation.New("unitPrice", fmt.Sprintf("invalid unit price %q", parts[3]))
	}
	in := budget.ItemInput{
		Category:  budget.Category(parts[0]),
		Name:      parts[1],
		Quantity:  qty,
		UnitPrice: price,
	}
	if len(parts) == 5 {
		in.Unit = parts[4]
	}
	return in, nil
}

func createBudget(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	p, err := application.NewBudget(budgetName, budgetCrop, budgetArea)
	if err != nil {
		return err
	}
	for _, raw := range budgetItems {
		in, err := parseItem(raw)
		if err != nil {
			return err
		}
		if _, err := p.AddItem(in); err != nil {
			return err
		}
	}
	if err := application.SaveBudget(ctx, p); err != nil {
		return err
	}
	return printMarkdown(cmd, report.BudgetMarkdown(p))
}

func addBudgetItem(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	p, err := application.Budget(ctx, args[0])
	if err != nil {
		return err
	}
	in := itemIn
	in.Category = budget.Category(itemCat)
	if _, err := p.AddItem(in); err != nil {
		return err
	}
	if err := application.SaveBudget(ctx, p); err != nil {
		return err
	}
	return printMarkdown(cmd, report.BudgetMarkdown(p))
}

func updateBudgetItem(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	in, err := parseItem(args[2])
	if err != nil {
		return err
	}
	p, err := application.Budget(ctx, args[0])
	if err != nil {
		return err
	}
	if _, err := p.UpdateItem(args[1], in); err != nil {
		return err
	}
	if err := application.SaveBudget(ctx, p); err != nil {
		return err
	}
	return printMarkdown(cmd, report.BudgetMarkdown(p))
}

func removeBudgetItem(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	p, err := application.Budget(ctx, args[0])
	if err != nil {
		return err
	}
	if err := p.RemoveItem(args[1]); err != nil {
		return err
	}
	if err := application.SaveBudget(ctx, p); err != nil {
		return err
	}
	return printMarkdown(cmd, report.BudgetMarkdown(p))
}

func listBudgets(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	plans, err := application.Budgets(ctx)
	if err != nil {
		return err
	}
	return printMarkdown(cmd, report.BudgetTable(plans))
}

func showBudget(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	p, err := application.Budget(ctx, args[0])
	if err != nil {
		return err
	}
	return printMarkdown(cmd, report.BudgetMarkdown(p))
}

func deleteBudget(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := application.DeleteBudget(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted budget %s\n", args[0])
	return nil
}
