package benchmark

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/mfinkle/llm-agents/pkg/llmutils"
)

// PrintSummary writes the benchmark summary and the most expensive and
// failed tests to w.
func PrintSummary(w io.Writer, results []*CaseResult, sum *Summary) {
	fmt.Fprintf(w, "\n=== BENCHMARK SUMMARY ===\n")
	fmt.Fprintf(w, "Model: %s\n", sum.Model)
	fmt.Fprintf(w, "Total Tests: %d\n", sum.TotalTests)
	fmt.Fprintf(w, "Successful Tests: %d\n", sum.SuccessfulTests)
	fmt.Fprintf(w, "Success Rate: %.2f%%\n", sum.SuccessRate)
	fmt.Fprintf(w, "Average Execution Time: %s\n", sum.AvgExecTime)

	fmt.Fprintf(w, "\n=== TOKEN USAGE SUMMARY ===\n")
	fmt.Fprintf(w, "Total Input Tokens: %d\n", sum.Usage.InputTokens)
	fmt.Fprintf(w, "Total Output Tokens: %d\n", sum.Usage.OutputTokens)
	fmt.Fprintf(w, "Total Tokens: %d\n", sum.Usage.Total())

	if len(results) > 0 {
		sorted := make([]*CaseResult, len(results))
		copy(sorted, results)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Usage.Total() > sorted[j].Usage.Total()
		})
		top := sorted
		if len(top) > 3 {
			top = top[:3]
		}
		fmt.Fprintf(w, "\nTop Tests by Token Usage:\n")
		for i, cr := range top {
			fmt.Fprintf(w, "  %d. %s: %d tokens (%d input, %d output)\n",
				i+1, cr.TestID, cr.Usage.Total(), cr.Usage.InputTokens, cr.Usage.OutputTokens)
		}
	}

	var failed []*CaseResult
	for _, cr := range results {
		if !cr.Success {
			failed = append(failed, cr)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(w, "\nFailed Tests:\n")
		for _, cr := range failed {
			if cr.Error != "" {
				fmt.Fprintf(w, " - %s: %s\n", cr.TestID, cr.Error)
			} else {
				fmt.Fprintf(w, " - %s\n", cr.TestID)
			}
		}
	}
}

var csvHeader = []string{
	"test_id", "success", "execution_time",
	"tools_called_count", "required_tools_count", "optional_tools_count", "optional_tools_used_count",
	"tools_matched", "response_matched",
	"input_tokens", "output_tokens", "total_tokens", "error",
}

// WriteCSV writes one summary row per test case.
func WriteCSV(w io.Writer, results []*CaseResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for _, cr := range results {
		row := []string{
			cr.TestID,
			strconv.FormatBool(cr.Success),
			fmt.Sprintf("%.3f", cr.ExecutionTime.Seconds()),
			strconv.Itoa(len(cr.ToolsCalled)),
			strconv.Itoa(len(cr.RequiredTools)),
			strconv.Itoa(len(cr.OptionalTools)),
			strconv.Itoa(len(cr.OptionalToolsUsed)),
			strconv.FormatBool(cr.ToolsMatched),
			strconv.FormatBool(cr.ResponseMatched),
			strconv.FormatInt(cr.Usage.InputTokens, 10),
			strconv.FormatInt(cr.Usage.OutputTokens, 10),
			strconv.FormatInt(cr.Usage.Total(), 10),
			cr.Error,
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush CSV")
}

// WriteJSON writes the full detailed results as indented JSON.
func WriteJSON(w io.Writer, results []*CaseResult) error {
	_, err := io.WriteString(w, llmutils.ToJSONIndent(results))
	return errors.Wrap(err, "failed to write JSON results")
}

// ExportCSV writes the summary rows to a file.
func ExportCSV(filename string, results []*CaseResult) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer f.Close()
	return WriteCSV(f, results)
}

// ExportJSON writes the detailed results to a file.
func ExportJSON(filename string, results []*CaseResult) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer f.Close()
	return WriteJSON(f, results)
}
