package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/cellbuf/internal/driver"
	"github.com/mesh-intelligence/cellbuf/pkg/types"
)

// forwarded describes a subcommand that the driver executes. Its flags are
// registered on the cobra command for --help and reassembled into driver
// arguments when it runs.
type forwarded struct {
	name  string
	short string
	flags func(fs *pflag.FlagSet)
}

func atFlag(fs *pflag.FlagSet) {
	fs.Int("at", 0, "explicit offset; the cursor moves there first")
}

func encodingFlags(fs *pflag.FlagSet) {
	atFlag(fs)
	fs.Bool("le", false, "little-endian byte order")
	fs.String("charset", string(types.CharsetUTF8), "string charset (utf8, utf16)")
}

var bufferCommands = []forwarded{
	{"write", "Write a typed value at the cursor", encodingFlags},
	{"read", "Read a typed value at the cursor", encodingFlags},
	{"clear", "Empty every cell of the region", nil},
	{"used", "Print the number of bytes before the first empty cell", nil},
	{"offset", "Print or move the cursor", nil},
	{"address", "Print the grid address of an offset", atFlag},
	{"remove", "Remove bytes and shift the rest left", atFlag},
	{"close", "Clear the buffer and refuse further use (needs --allow-close)", nil},
	{"scenario", "Write or read the fixed location scenario", nil},
}

func (a *app) bufferCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(bufferCommands))
	for _, f := range bufferCommands {
		cmds = append(cmds, a.forwardCmd(f.name, f.short, f.flags))
	}
	return cmds
}

// forwardCmd builds a cobra command that runs the driver command name.
// Flags stop at the first positional argument so negative values such as -64 are never read as flags; flags after it reach the driver unparsed.
func (a *app) forwardCmd(name, short string, flags func(fs *pflag.FlagSet)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   driver.Usage(name),
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := append([]string{name}, localFlagArgs(cmd)...)
			argv = append(argv, args...)
			return a.withDriver(func(d *driver.Driver, _ types.Store, _ types.Config) error {
				out, err := d.ExecuteArgs(argv)
				if err != nil {
					return err
				}
				printOutput(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	if flags != nil {
		flags(cmd.Flags())
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// localFlagArgs renders the command's own flags that were set on the
// command line as --name=value tokens. LocalNonPersistentFlags only records
// definitions, so set flags are found on the parsed FlagSet.
func localFlagArgs(cmd *cobra.Command) []string {
	local := cmd.LocalNonPersistentFlags()
	var args []string
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name == "help" || local.Lookup(f.Name) == nil {
			return
		}
		args = append(args, "--"+f.Name+"="+f.Value.String())
	})
	return args
}
