// Output helpers shared by the nutrifit commands.
package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/nutrifit/internal/render"
)

// emit writes v as JSON in --json mode, otherwise calls text.
func (a *app) emit(cmd *cobra.Command, v any, text func(w io.Writer) error) error {
	w := cmd.OutOrStdout()
	var err error
	if a.flagJSON {
		err = render.JSON(w, v)
	} else {
		err = text(w)
	}
	if err != nil {
		return sysError(fmt.Errorf("write output: %w", err))
	}
	return nil
}

// line returns a text writer that prints a single formatted line.
func line(format string, args ...any) func(w io.Writer) error {
	return func(w io.Writer) error {
		_, err := fmt.Fprintf(w, format+"\n", args...)
		return err
	}
}
