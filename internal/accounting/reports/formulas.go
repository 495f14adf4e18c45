package reports

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/finreports/internal/workbook"
)

var wildcardEscaper = strings.NewReplacer("~", "~~", "*", "~*", "?", "~?")

// quote renders a spreadsheet string literal.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// literal escapes SUMIF wildcards so the criterion matches s exactly.
func literal(s string) string {
	return wildcardEscaper.Replace(s)
}

func kindPattern(prefix string) string {
	return prefix + ":*"
}

// tbSum sums the Balance column of the trial balance for rows matching criteria.
func tbSum(criteria string) string {
	return fmt.Sprintf("SUMIF(%s, %s, %s)",
		workbook.External(SheetTrialBalance, "A:A"), quote(criteria), workbook.External(SheetTrialBalance, "D:D"))
}

// tbLookup reads the Balance column of the trial balance row named by ref.
func tbLookup(ref string) string {
	return fmt.Sprintf("VLOOKUP(%s, %s, 4, FALSE)", ref, workbook.External(SheetTrialBalance, "A:D"))
}

// labelLookup reads column B of the row labelled label on another sheet.
func labelLookup(sheet, label string) string {
	return fmt.Sprintf("VLOOKUP(%s, %s, 2, FALSE)", quote(label), workbook.External(sheet, "A:B"))
}

func checkFormula(left, right string) string {
	return fmt.Sprintf(`IF(%s=%s, "Balanced", "Error")`, left, right)
}

// sumRange sums column col over rows [first, last]; blank when the range is empty.
func sumRange(col, first, last int) string {
	if last < first {
		return ""
	}
	return fmt.Sprintf("SUM(%s:%s)", workbook.Ref(col, first), workbook.Ref(col, last))
}

func refB(row int) string {
	return workbook.Ref(2, row)
}
