package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// requireArgs validates that exactly the named positional arguments are
// provided. A missing argument gets a helpful error with the usage line and
// the command's examples.
func requireArgs(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < len(names) {
			missing := make([]string, 0, len(names)-len(args))
			for _, n := range names[len(args):] {
				missing = append(missing, "<"+n+">")
			}
			msg := fmt.Sprintf("missing required argument: %s\n\nUsage: %s", strings.Join(missing, " "), cmd.UseLine())
			if cmd.Example != "" {
				msg += "\n\nExample:\n" + cmd.Example
			}
			return fmt.Errorf("%s", msg)
		}
		if len(args) > len(names) {
			return fmt.Errorf("accepts %d arg(s), received %d", len(names), len(args))
		}
		return nil
	}
}
