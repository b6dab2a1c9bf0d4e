package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tendergate/tendergate/internal/application/gapclosure"
)

type gapsResult struct {
	*gapclosure.Recommendation
}

func (r gapsResult) TableHeaders() []string {
	return []string{"KIND", "NAME", "DETAIL"}
}

func (r gapsResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Options)+len(r.Partners))
	for _, opt := range r.Options {
		rows = append(rows, []string{"option", opt.Method,
			fmt.Sprintf("~%d days, success %.0f%%", opt.TypicalTimeDays, opt.SuccessRate*100)})
	}
	for _, p := range r.Partners {
		rating := "unrated"
		if p.Rating != nil {
			rating = strconv.FormatFloat(*p.Rating, 'f', 1, 64)
		}
		rows = append(rows, []string{"partner", p.Name, "rating " + rating})
	}
	return rows
}

func (r gapsResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Gap type: %s\n", r.GapType)
	if len(r.Options) == 0 {
		sb.WriteString("No closure options on file for this gap type.\n")
	}
	for i, opt := range r.Options {
		fmt.Fprintf(&sb, "  %d. %s (~%d days, success %.0f%%)\n",
			i+1, opt.Method, opt.TypicalTimeDays, opt.SuccessRate*100)
	}
	if len(r.Partners) > 0 {
		sb.WriteString("Suggested partners:\n")
		for _, p := range r.Partners {
			if p.Rating != nil {
				fmt.Fprintf(&sb, "  - %s (rating %.1f)\n", p.Name, *p.Rating)
			} else {
				fmt.Fprintf(&sb, "  - %s (unrated)\n", p.Name)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// NewGapsCmd creates the gaps command.
func NewGapsCmd() *cobra.Command {
	var conditionID string

	cmd := &cobra.Command{
		Use:   "gaps",
		Short: "Suggest closure options and partners for a failed gate condition",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			condID, err := uuid.Parse(conditionID)
			if err != nil {
				return fmt.Errorf("invalid condition id %q: %w", conditionID, err)
			}

			ctx := cmd.Context()
			cond, err := cliCtx.Services.Conditions.FindByID(ctx, condID)
			if err != nil {
				return err
			}
			rec, err := cliCtx.Services.Gaps.SuggestClosures(ctx, cond)
			if err != nil {
				return err
			}

			return PrintResult(cmd, gapsResult{rec})
		},
	}

	cmd.Flags().StringVar(&conditionID, "condition", "", "gate condition ID [REQUIRED]")
	_ = cmd.MarkFlagRequired("condition")

	return cmd
}
