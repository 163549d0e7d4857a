package cli

import (
	"fmt"
	"os"

	"github.com/pillarlog/pillarlog/internal/backup"
)

type ExportCmd struct {
	Path   string `arg:"" optional:"" help:"Destination file; writes to stdout when omitted."`
	Format string `help:"json or yaml; inferred from the file extension when omitted."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	format, err := backup.ParseFormat(c.Format, c.Path)
	if err != nil {
		return err
	}

	if c.Path == "" {
		return backup.Export(ctx.Store, os.Stdout, format)
	}
	if err := backup.ExportFile(ctx.Store, c.Path, format); err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", c.Path)
	return nil
}

type ImportCmd struct {
	Path   string `arg:"" help:"Snapshot file to import."`
	Format string `help:"json or yaml; inferred from the file extension when omitted."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	format, err := backup.ParseFormat(c.Format, c.Path)
	if err != nil {
		return err
	}
	if err := backup.ImportFile(ctx.Store, c.Path, format); err != nil {
		return err
	}

	// Imported plans may carry pending items for today.
	ctx.Tracker.Resync()

	fmt.Printf("Imported %s\n", c.Path)
	return nil
}
