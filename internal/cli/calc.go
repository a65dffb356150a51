package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/moveplan/moveplan/pkg/calculator"
)

type calcCmd struct{}

func (*calcCmd) Name() string     { return "calc" }
func (*calcCmd) Synopsis() string { return "evaluate an arithmetic expression" }
func (*calcCmd) Usage() string {
	return `moveplan calc <expression>

  Numbers, parentheses and + - * / only, e.g. moveplan calc "(1200 + 300) / 3".
`
}
func (*calcCmd) SetFlags(*flag.FlagSet) {}

func (*calcCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	result, err := calculator.Evaluate(strings.Join(f.Args(), " "))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(strconv.FormatFloat(result, 'f', -1, 64))
	return subcommands.ExitSuccess
}
