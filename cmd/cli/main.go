// ShiftGuard - Timecard Compliance Tool
//
// ShiftGuard reads timecard exports and reports shifts that break
// consecutive-day, rest-gap and shift-length rules.
package main

import (
	"os"

	"github.com/ccollicutt/shiftguard/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
