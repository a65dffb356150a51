package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/moveplan/moveplan/internal/app"
)

type exportCmd struct {
	configPath *string
	output     string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write a backup of every collection as JSON" }
func (*exportCmd) Usage() string {
	return `moveplan export [-o <file>]

  Writes the backup document to <file>, or to stdout when -o is omitted.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "File to write the backup to.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApplication(*c.configPath, func(deps *app.Dependencies) error {
		doc, err := deps.BackupService.Export(ctx)
		if err != nil {
			return err
		}

		if c.output == "" {
			return encodeIndented(os.Stdout, doc)
		}
		return writeJSONFile(c.output, doc)
	})
}

// writeJSONFile reports a failed close, since that is where a short write
// surfaces.
func writeJSONFile(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	if err := encodeIndented(file, v); err != nil {
		_ = file.Close()
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("could not close %s: %w", path, err)
	}
	return nil
}

func encodeIndented(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

type importCmd struct {
	configPath *string
	file       string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "restore a backup file" }
func (*importCmd) Usage() string {
	return `moveplan import -f <file>

  Restores every recognized section of the backup. Nothing is written when the
  file cannot be read as a backup.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Backup file to import (required).")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "import: -f is required")
		f.Usage()
		return subcommands.ExitUsageError
	}
	return withApplication(*c.configPath, func(deps *app.Dependencies) error {
		file, err := os.Open(c.file)
		if err != nil {
			return fmt.Errorf("could not open %s: %w", c.file, err)
		}
		defer file.Close()

		restored, err := deps.BackupService.Import(ctx, file)
		if err != nil {
			return err
		}
		fmt.Printf("restored: %s\n", strings.Join(restored, ", "))
		return nil
	})
}

type cleanupCmd struct {
	configPath *string
}

func (*cleanupCmd) Name() string     { return "cleanup" }
func (*cleanupCmd) Synopsis() string { return "remove expired entries and entries past retention" }
func (*cleanupCmd) Usage() string {
	return `moveplan cleanup
`
}
func (*cleanupCmd) SetFlags(*flag.FlagSet) {}

func (c *cleanupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApplication(*c.configPath, func(deps *app.Dependencies) error {
		removed, err := deps.StorageService.Cleanup(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d entries\n", removed)
		return nil
	})
}

type keysCmd struct {
	configPath *string
}

func (*keysCmd) Name() string     { return "keys" }
func (*keysCmd) Synopsis() string { return "list stored keys" }
func (*keysCmd) Usage() string {
	return `moveplan keys
`
}
func (*keysCmd) SetFlags(*flag.FlagSet) {}

func (c *keysCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApplication(*c.configPath, func(deps *app.Dependencies) error {
		keys, err := deps.StorageService.ListKeys(ctx)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil
	})
}
