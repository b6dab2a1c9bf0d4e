package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tendergate/tendergate/internal/application/batch"
	"github.com/tendergate/tendergate/internal/application/classification"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/pkg/errors"
)

// evaluateResult pairs the batch run with the conditions it covered so the
// table output can show per-condition statuses.
type evaluateResult struct {
	*batch.RunResult
}

func (r evaluateResult) TableHeaders() []string {
	return []string{"CONDITION", "STATUS", "GAP"}
}

func (r evaluateResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Results)+len(r.Failures))
	for _, res := range r.Results {
		rows = append(rows, []string{res.ConditionID, string(res.Status), res.GapDescription})
	}
	for _, f := range r.Failures {
		rows = append(rows, []string{f.ConditionID, "ERROR", f.Error})
	}
	return rows
}

func (r evaluateResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Evaluated %d of %d conditions in %s\n", r.Completed, r.Total, r.Elapsed)
	counts := map[condition.ConditionStatus]int{}
	for _, res := range r.Results {
		counts[res.Status]++
	}
	for _, status := range []condition.ConditionStatus{
		condition.StatusMeets, condition.StatusPartiallyMeets,
		condition.StatusDoesNotMeet, condition.StatusUnknown,
	} {
		if counts[status] > 0 {
			fmt.Fprintf(&sb, "  %s: %d\n", status, counts[status])
		}
	}
	if len(r.Failures) > 0 {
		fmt.Fprintf(&sb, "  failures: %d\n", len(r.Failures))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// NewEvaluateCmd creates the evaluate command.
func NewEvaluateCmd() *cobra.Command {
	var (
		tenderID  string
		companyID string
		progress  bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Classify every gate condition of a tender in one batch run",
		Long:  "Runs the classifier over all conditions of a tender sequentially.  A failed\nitem does not stop the run; cancellation keeps the results produced so far.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			tID, err := uuid.Parse(tenderID)
			if err != nil {
				return fmt.Errorf("invalid tender id %q: %w", tenderID, err)
			}
			compID, err := uuid.Parse(companyID)
			if err != nil {
				return fmt.Errorf("invalid company id %q: %w", companyID, err)
			}

			ctx := cmd.Context()
			svc := cliCtx.Services

			conditions, err := svc.Conditions.FindByTender(ctx, tID)
			if err != nil {
				return err
			}

			var onProgress batch.ProgressFunc
			if progress {
				onProgress = func(completed, total int) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\rclassified %d/%d", completed, total)
					if completed == total {
						fmt.Fprintln(cmd.ErrOrStderr())
					}
				}
			}

			run, err := svc.Batch.RunBatch(ctx, conditions,
				func(ctx context.Context, cond *condition.GateCondition) (*classification.Result, error) {
					facts, ferr := svc.Facts.GatherFacts(ctx, compID, cond)
					if ferr != nil {
						return nil, ferr
					}
					return svc.Classifier.ClassifyAndRecord(ctx, cond, facts)
				}, onProgress)
			if err != nil && !errors.IsCode(err, errors.ErrCodeBatchCancelled) {
				return err
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "run cancelled; partial results below")
			}

			return PrintResult(cmd, evaluateResult{run})
		},
	}

	cmd.Flags().StringVar(&tenderID, "tender", "", "tender ID [REQUIRED]")
	cmd.Flags().StringVar(&companyID, "company", "", "company ID to evaluate [REQUIRED]")
	cmd.Flags().BoolVar(&progress, "progress", false, "report per-item progress on stderr")
	_ = cmd.MarkFlagRequired("tender")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}
