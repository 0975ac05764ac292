package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// openInput returns the file named by args[0], or stdin when no file is
// given. Reading a terminal is refused so a forgotten argument doesn't hang.
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, "", err
		}
		return f, args[0], nil
	}
	if cmd.InOrStdin() == os.Stdin && !stdinRedirected() {
		return nil, "", fmt.Errorf("no input: pass a FILE or pipe text on stdin")
	}
	return io.NopCloser(cmd.InOrStdin()), "stdin", nil
}

// readInput reads the whole input named by args.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	r, _, err := openInput(cmd, args)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return buf.String(), nil
}
