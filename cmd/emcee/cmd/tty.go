package cmd

import "os"

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// stdinRedirected reports whether ciphertext is arriving on a pipe or file.
func stdinRedirected() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice == 0
}

// resolveColor picks colour output from --color and --no-color. A set
// NO_COLOR environment variable behaves like --no-color unless --color=always
// is given explicitly.
func resolveColor(mode string, noColor bool) bool {
	if noColor {
		return false
	}
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return isTerminal(os.Stdout)
}
