package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tendergate/tendergate/internal/application/classification"
)

// classifyResult wraps the classification outcome for table rendering.
type classifyResult struct {
	*classification.Result
}

func (r classifyResult) TableHeaders() []string {
	return []string{"CONDITION", "STATUS", "GAP"}
}

func (r classifyResult) TableRows() [][]string {
	return [][]string{{r.ConditionID, string(r.Status), r.GapDescription}}
}

func (r classifyResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Condition %s: %s\n", r.ConditionID, r.Status)
	for _, ev := range r.Evidence {
		fmt.Fprintf(&sb, "  - %s\n", ev)
	}
	if r.GapDescription != "" {
		fmt.Fprintf(&sb, "  gap: %s\n", r.GapDescription)
	}
	if r.Interpretation != "" {
		fmt.Fprintf(&sb, "  interpretation: %s\n", r.Interpretation)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	var (
		conditionID string
		companyID   string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify one gate condition against a company's qualifications",
		Long:  "Gathers the company's accumulated facts (experience years, revenue, project\ncounts), compares them to the condition's thresholds and records the\nresulting compliance status.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			condID, err := uuid.Parse(conditionID)
			if err != nil {
				return fmt.Errorf("invalid condition id %q: %w", conditionID, err)
			}
			compID, err := uuid.Parse(companyID)
			if err != nil {
				return fmt.Errorf("invalid company id %q: %w", companyID, err)
			}

			ctx := cmd.Context()
			svc := cliCtx.Services

			cond, err := svc.Conditions.FindByID(ctx, condID)
			if err != nil {
				return err
			}
			facts, err := svc.Facts.GatherFacts(ctx, compID, cond)
			if err != nil {
				return err
			}
			res, err := svc.Classifier.ClassifyAndRecord(ctx, cond, facts)
			if err != nil {
				return err
			}

			return PrintResult(cmd, classifyResult{res})
		},
	}

	cmd.Flags().StringVar(&conditionID, "condition", "", "gate condition ID [REQUIRED]")
	cmd.Flags().StringVar(&companyID, "company", "", "company ID to evaluate [REQUIRED]")
	_ = cmd.MarkFlagRequired("condition")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}
