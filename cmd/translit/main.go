package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ad/translit"
	"github.com/ad/translit/internal/logger"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	log := logger.FromEnv()

	if err := mainE(log, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE(log *slog.Logger, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := ff.NewFlagSet("translit")
	var (
		schemaName = fs.StringLong("schema", "wikipedia", "transliteration schema")
		caseMode   = fs.StringLong("case", "", "case mode override (leading or word)")
		ascii      = fs.BoolLong("ascii", "strip diacritics from the output")
		list       = fs.BoolLong("list", "list bundled schemas and exit")
		show       = fs.BoolLong("show", "print the schema definition and exit")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("TRANSLIT")); err != nil {
		fmt.Fprintf(stdout, "%s\n", ffhelp.Flags(fs))
		if errors.Is(err, ff.ErrHelp) {
			return nil
		}

		return fmt.Errorf("parsing flags: %w", err)
	}

	registry := translit.Default()

	if *list {
		return listSchemas(stdout, registry)
	}

	if *show {
		data, err := registry.Source(*schemaName)
		if err != nil {
			return err
		}

		_, err = stdout.Write(data)

		return err
	}

	schema, err := registry.Lookup(*schemaName)
	if err != nil {
		return err
	}

	opts := []translit.Option{}
	if *caseMode != "" {
		mode, err := translit.ParseCaseMode(*caseMode)
		if err != nil {
			return err
		}
		opts = append(opts, translit.WithCase(mode))
	}
	if *ascii {
		opts = append(opts, translit.WithoutDiacritics())
	}
	tr := translit.New(schema, opts...)

	log.Debug("transliterating", "schema", tr.Schema().Name(), "args", len(fs.GetArgs()))

	if rest := fs.GetArgs(); len(rest) > 0 {
		_, err := fmt.Fprintln(stdout, tr.Translate(strings.Join(rest, " ")))

		return err
	}

	return translateLines(tr, stdin, stdout)
}

func translateLines(tr *translit.Translator, r io.Reader, w io.Writer) error {
	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)

	for {
		line, err := in.ReadString('\n')
		if line != "" {
			if _, werr := out.WriteString(tr.Translate(line)); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}

	return out.Flush()
}

func listSchemas(w io.Writer, registry *translit.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range registry.Names() {
		s, err := registry.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", s.Name(), s.Description())
	}

	return tw.Flush()
}
