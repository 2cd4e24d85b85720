package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rohansaphal97/rmllib"
	"github.com/spf13/cobra"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var flags modelFlags
	var cvFolds int

	cmd := &cobra.Command{
		Use:   "evaluate <dataset>",
		Short: "Evaluate model accuracy via cross-validation over the labeled nodes",
		Args:  cobra.ExactArgs(1),
		Example: `  rmllib evaluate data/cora --cv 10
  rmllib evaluate data/cora --learn r_iid --infer r_iid --symmetric`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if cmd.Flags().Changed("cv") {
				cfg.Evaluate.Folds = cvFolds
			}
			opts, err := cfg.Model.Options()
			if err != nil {
				return err
			}

			ds, err := rmllib.LoadDataset(cmd.Context(), args[0], cfg.Dataset.Symmetric)
			if err != nil {
				return err
			}

			slog.Info("Evaluating", "folds", cfg.Evaluate.Folds, "dataset", args[0],
				"learn", opts.LearnMethod, "infer", opts.InferMethod)
			start := time.Now()
			result, err := rmllib.Evaluate(ds, &rmllib.EvalConfig{
				Folds: cfg.Evaluate.Folds,
				Model: opts,
			})
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			printReport(cmd.OutOrStdout(), result)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&cvFolds, "cv", 10, "Number of cross-validation folds")
	return cmd
}

func printReport(w io.Writer, result *rmllib.EvalResult) {
	_, _ = fmt.Fprintf(w, "Accuracy: %.1f%% (%d/%d nodes)\n",
		result.Accuracy*100, result.Correct, result.Total)
	if result.Indeterminate > 0 {
		_, _ = fmt.Fprintf(w, "Indeterminate: %d\n", result.Indeterminate)
	}
	printConfusionMatrix(w, result.Confusion)

	_, _ = fmt.Fprintf(w, "\nPositive class:\n")
	_, _ = fmt.Fprintf(w, "%6s  %6s  %6s\n", "prec", "recall", "f1")
	_, _ = fmt.Fprintf(w, "%5.1f%%  %5.1f%%  %5.1f%%\n",
		result.Precision*100, result.Recall*100, result.F1*100)
}

func printConfusionMatrix(w io.Writer, confusion [2][2]int) {
	_, _ = fmt.Fprintf(w, "\nConfusion matrix (rows=true, cols=predicted):\n")
	_, _ = fmt.Fprintf(w, "%8s %5d %5d  total  acc%%\n", "", 0, 1)

	for truth := range confusion {
		_, _ = fmt.Fprintf(w, "%8d", truth)
		total := 0
		for _, count := range confusion[truth] {
			total += count
			if count == 0 {
				_, _ = fmt.Fprintf(w, " %5s", ".")
			} else {
				_, _ = fmt.Fprintf(w, " %5d", count)
			}
		}
		acc := 0.0
		if total > 0 {
			acc = float64(confusion[truth][truth]) / float64(total) * 100
		}
		_, _ = fmt.Fprintf(w, "  %5d %5.1f\n", total, acc)
	}
}
