package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tendergate/tendergate/internal/application/market"
	"github.com/tendergate/tendergate/internal/application/strategy"
)

type strategyResult struct {
	*strategy.Plan
}

func (r strategyResult) TableHeaders() []string {
	return []string{"PRIORITY", "TOPIC", "IMPACT", "ACTION"}
}

func (r strategyResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		rows = append(rows, []string{
			strconv.Itoa(rec.Priority), rec.Topic, string(rec.Impact), rec.Action,
		})
	}
	return rows
}

func (r strategyResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Mandatory conditions: %d (%d unmet)\n", r.MandatoryCount, r.MandatoryUnmet)
	fmt.Fprintf(&sb, "Scoring weight covered: %.1f\n", r.TotalScoreWeight)
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&sb, "  %d. [%s] %s: %s\n", rec.Priority, rec.Impact, rec.Topic, rec.Action)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// NewStrategyCmd creates the strategy command.
func NewStrategyCmd() *cobra.Command {
	var tenderID string

	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Build a bid strategy plan from a tender's gate conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			tID, err := uuid.Parse(tenderID)
			if err != nil {
				return fmt.Errorf("invalid tender id %q: %w", tenderID, err)
			}

			ctx := cmd.Context()
			conditions, err := cliCtx.Services.Conditions.FindByTender(ctx, tID)
			if err != nil {
				return err
			}
			plan, err := cliCtx.Services.Strategies.OptimizeStrategy(ctx, conditions)
			if err != nil {
				return err
			}
			return PrintResult(cmd, strategyResult{plan})
		},
	}

	cmd.Flags().StringVar(&tenderID, "tender", "", "tender ID [REQUIRED]")
	_ = cmd.MarkFlagRequired("tender")

	return cmd
}

type competitorsResult []market.Prediction

func (r competitorsResult) TableHeaders() []string {
	return []string{"COMPETITOR", "PROBABILITY", "WIN RATE", "REASON"}
}

func (r competitorsResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, p := range r {
		winRate := "n/a"
		if p.WinRate != nil {
			winRate = fmt.Sprintf("%.0f%%", *p.WinRate*100)
		}
		rows = append(rows, []string{
			p.CompetitorName, fmt.Sprintf("%.2f", p.Probability), winRate, p.Reason,
		})
	}
	return rows
}

func (r competitorsResult) String() string {
	if len(r) == 0 {
		return "No active competitors found for this tender."
	}
	var sb strings.Builder
	for _, p := range r {
		fmt.Fprintf(&sb, "%-30s  p=%.2f  %s\n", p.CompetitorName, p.Probability, p.Reason)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// NewCompetitorsCmd creates the competitors command.
func NewCompetitorsCmd() *cobra.Command {
	var (
		tenderID string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "competitors",
		Short: "Predict likely competitors for a tender",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			tID, err := uuid.Parse(tenderID)
			if err != nil {
				return fmt.Errorf("invalid tender id %q: %w", tenderID, err)
			}

			ctx := cmd.Context()
			tender, err := cliCtx.Services.Tenders.FindTender(ctx, tID)
			if err != nil {
				return err
			}
			predictions, err := cliCtx.Services.Markets.PredictCompetitors(ctx, tender, limit)
			if err != nil {
				return err
			}
			return PrintResult(cmd, competitorsResult(predictions))
		},
	}

	cmd.Flags().StringVar(&tenderID, "tender", "", "tender ID [REQUIRED]")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of predictions")
	_ = cmd.MarkFlagRequired("tender")

	return cmd
}

type competitionResult struct {
	*market.CompetitionSummary
}

func (r competitionResult) TableHeaders() []string {
	return []string{"SAMPLE", "LEVEL", "AVG PRICE", "MIN PRICE", "MAX PRICE", "AVG BIDDERS"}
}

func (r competitionResult) TableRows() [][]string {
	if !r.Sufficient {
		return nil
	}
	return [][]string{{
		strconv.Itoa(r.SampleSize), string(r.Level),
		fmt.Sprintf("%.0f", r.AvgWinningPrice),
		fmt.Sprintf("%.0f", r.MinWinningPrice),
		fmt.Sprintf("%.0f", r.MaxWinningPrice),
		fmt.Sprintf("%.1f", r.AvgBidderCount),
	}}
}

func (r competitionResult) String() string {
	if !r.Sufficient {
		return "No historical results match this tender; competition level unknown."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Competition level: %s (sample of %d results)\n", r.Level, r.SampleSize)
	fmt.Fprintf(&sb, "  winning price: avg %.0f, min %.0f, max %.0f\n",
		r.AvgWinningPrice, r.MinWinningPrice, r.MaxWinningPrice)
	fmt.Fprintf(&sb, "  avg bidders per tender: %.1f\n", r.AvgBidderCount)
	return strings.TrimRight(sb.String(), "\n")
}

// NewCompetitionCmd creates the competition command.
func NewCompetitionCmd() *cobra.Command {
	var tenderID string

	cmd := &cobra.Command{
		Use:   "competition",
		Short: "Summarize historical competition for a tender's category and issuer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			tID, err := uuid.Parse(tenderID)
			if err != nil {
				return fmt.Errorf("invalid tender id %q: %w", tenderID, err)
			}

			ctx := cmd.Context()
			tender, err := cliCtx.Services.Tenders.FindTender(ctx, tID)
			if err != nil {
				return err
			}
			summary, err := cliCtx.Services.Markets.AnalyzeCompetition(ctx, tender)
			if err != nil {
				return err
			}
			return PrintResult(cmd, competitionResult{summary})
		},
	}

	cmd.Flags().StringVar(&tenderID, "tender", "", "tender ID [REQUIRED]")
	_ = cmd.MarkFlagRequired("tender")

	return cmd
}
