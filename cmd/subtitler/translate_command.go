package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/subtitler/internal/app"
	"github.com/kbukum/subtitler/pipeline"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var language string
	var outPath string

	cmd := &cobra.Command{
		Use:   "translate <video>",
		Short: "Transcribe a video and translate its subtitles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video := args[0]
			f, err := os.Open(video)
			if err != nil {
				return fmt.Errorf("open video: %w", err)
			}
			defer f.Close()

			a, err := ctx.newApp(cmd, true)
			if err != nil {
				return err
			}
			stack, err := app.Wire(a)
			if err != nil {
				return err
			}

			var res *pipeline.Result
			err = a.RunTask(cmd.Context(), func(runCtx context.Context) error {
				var runErr error
				res, runErr = stack.Pipeline().Run(runCtx, pipeline.Input{
					Filename: filepath.Base(video),
					Body:     f,
					Language: language,
				})
				return runErr
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, res, outPath)
		},
	}

	cmd.Flags().StringVarP(&language, "lang", "l", "", "Target language, a name or a BCP 47 tag")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the translated SRT to this file instead of stdout")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}

// writeResult prints the translation (or saves it) and the structure
// report. With --out the report goes to stdout; otherwise to stderr so the
// SRT can be piped.
func writeResult(cmd *cobra.Command, res *pipeline.Result, outPath string) error {
	report := cmd.ErrOrStderr()
	if strings.TrimSpace(outPath) != "" {
		if err := os.WriteFile(outPath, []byte(res.Translation), 0o644); err != nil {
			return fmt.Errorf("write translation: %w", err)
		}
		report = cmd.OutOrStdout()
		fmt.Fprintf(report, "Wrote %s\n", outPath)
	} else {
		fmt.Fprint(cmd.OutOrStdout(), res.Translation)
		if !strings.HasSuffix(res.Translation, "\n") {
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}
	printReport(report, res)
	return nil
}

func printReport(w io.Writer, res *pipeline.Result) {
	cmp := res.Comparison
	status := "matches"
	if !cmp.Matches() {
		status = "differs"
	}
	mismatches := "-"
	if len(cmp.TimestampMismatches) > 0 {
		parts := make([]string, len(cmp.TimestampMismatches))
		for i, idx := range cmp.TimestampMismatches {
			parts[i] = strconv.Itoa(idx)
		}
		mismatches = strings.Join(parts, ",")
	}
	fmt.Fprintln(w, renderTable(
		[]string{"ID", "Language", "Source Blocks", "Translated Blocks", "Timing Mismatches", "Structure"},
		[][]string{{res.ID, res.Language, strconv.Itoa(cmp.SourceBlocks), strconv.Itoa(cmp.TranslatedBlocks), mismatches, status}},
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))

	if len(res.Durations) == 0 {
		return
	}
	steps := make([]string, 0, len(res.Durations))
	for step := range res.Durations {
		steps = append(steps, step)
	}
	sort.Slice(steps, func(i, j int) bool { return stepOrder(steps[i]) < stepOrder(steps[j]) })
	rows := make([][]string, 0, len(steps))
	for _, step := range steps {
		rows = append(rows, []string{step, res.Durations[step].Round(time.Millisecond).String()})
	}
	fmt.Fprintln(w, renderTable([]string{"Step", "Duration"}, rows, []columnAlignment{alignLeft, alignRight}))
}

var stepSequence = []string{pipeline.StepSave, pipeline.StepExtract, pipeline.StepTranscribe, pipeline.StepTranslate, pipeline.StepStore}

func stepOrder(step string) int {
	for i, s := range stepSequence {
		if s == step {
			return i
		}
	}
	return len(stepSequence)
}
