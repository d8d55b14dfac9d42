package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/canvass/internal/printer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// resetFlags restores every flag to its default so runs don't leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the real root command with args and captures its output.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	restore := printer.SetOutput(&out, &errOut)
	defer restore()

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	// A nil slice would make cobra fall back to os.Args
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err = Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const testRegister = `Elector Number,Full Name,Address,Street,Postcode
1,Ann,7 Elm St,Elm St,AB1
2,Ben,4 Elm St,Elm St,AB1
3,Cat,12A Elm St,Elm St,AB1
4,Dev,9 Elm St,Elm St,AB1
5,Eve,1 Oak Rd,Oak Rd,AB2
6,Fay,2 Oak Rd,Oak Rd,AB2
7,Gus,The Lodge,Oak Rd,AB2
`

const strictRegister = `Elector Number,Full Name,Address,Street,Postcode,Polling District,Ward Name,Constituency Name,Elector Type
1,Ann,7 Elm St,Elm St,AB1,PD1,North,Ashby,E
2,Eve,1 Oak Rd,Oak Rd,AB2,PD1,North,Ashby,E
`
