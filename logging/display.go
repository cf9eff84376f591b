package logging

import (
	"errors"
	"fmt"

	"github.com/ComedicChimera/ratesfmt/common"
	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// PrintErrorMessage prints a standard Go error to the console
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintWarningMessage prints a warning message to the console
func PrintWarningMessage(tag, msg string) {
	WarnStyleBG.Print(tag)
	WarnColorFG.Println(" " + msg)
}

// PrintInfoMessage prints an informational message to the user
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

func (tm *textMessage) display() {
	switch tm.lvl {
	case LogLevelError:
		PrintErrorMessage(tm.tag+" Error", errors.New(tm.msg))
	case LogLevelWarning:
		PrintWarningMessage(tm.tag+" Warning", tm.msg)
	default:
		PrintInfoMessage(tm.tag, tm.msg)
	}
}

// -----------------------------------------------------------------------------

// DisplayHeader prints the tool name and version
func DisplayHeader() {
	fmt.Print("ratesfmt ")
	InfoColorFG.Println("v" + common.RatesfmtVersion)
}

// DisplayAttributes prints the attributes of a parsed trade as a table of
// name and value rows
func DisplayAttributes(productType string, rows [][]string) error {
	data := pterm.TableData{{"attribute", "value"}}
	data = append(data, rows...)

	fmt.Print("product: ")
	InfoColorFG.Println(productType)

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// DisplayProducts prints the product types of an asset class alongside their
// attributes
func DisplayProducts(assetClass string, rows [][]string) error {
	fmt.Print("asset class: ")
	InfoColorFG.Println(assetClass)

	data := pterm.TableData{{"product", "attributes"}}
	return pterm.DefaultTable.WithHasHeader().WithData(append(data, rows...)).Render()
}
