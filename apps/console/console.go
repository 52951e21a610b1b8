package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/record"
	"github.com/trezcool/masomo-records/core/resource"
)

var errQuit = errors.New("quit")

type page struct {
	schema   record.Schema
	ctl      *resource.Controller
	reported error // last error signal shown
}

// console reads one command per line and renders the current page after each of them.
type console struct {
	in          *bufio.Scanner
	out         io.Writer
	logger      core.Logger
	interactive bool

	pages   []*page
	current *page
}

func newConsole(in io.Reader, out io.Writer, logger core.Logger, interactive bool) *console {
	return &console{
		in:          bufio.NewScanner(in),
		out:         out,
		logger:      logger,
		interactive: interactive,
	}
}

// addPage registers a page; its controller asks this console to confirm removals.
func (c *console) addPage(schema record.Schema, backend resource.Backend, opts ...resource.Option) error {
	ctl, err := resource.NewController(schema, backend, c.confirm, c.logger, opts...)
	if err != nil {
		return errors.Wrapf(err, "page %s", schema.Collection)
	}
	c.pages = append(c.pages, &page{schema: schema, ctl: ctl})
	return nil
}

func (c *console) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *console) prompt() {
	if !c.interactive {
		return
	}
	name := "records"
	if c.current != nil {
		name = c.current.schema.Collection
	}
	c.printf("%s> ", name)
}

// run processes commands until quit or end of input.
func (c *console) run(ctx context.Context) error {
	c.printf("Masomo Records console. Type \"help\" for commands.\n")
	if len(c.pages) > 0 {
		if err := c.open(ctx, c.pages[0].schema.Collection); err != nil {
			c.printf("error: %v\n", err)
		}
	}

	for {
		c.prompt()
		line, ok := c.readLine()
		if !ok {
			return errors.Wrap(c.in.Err(), "reading input")
		}
		if line == "" {
			continue
		}

		err := c.exec(ctx, line)
		if err == errQuit {
			return nil
		}
		c.report(err)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// report prints the error of the last command, then the error signal of the page once, when it changes.
func (c *console) report(err error) {
	if err != nil {
		c.printf("error: %v\n", err)
	}
	if c.current == nil {
		return
	}
	sig := c.current.ctl.View().Err
	if sig != nil && sig != c.current.reported && sig != err {
		c.printf("! %v (\"dismiss\" to clear)\n", sig)
	}
	c.current.reported = sig
}

func (c *console) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	cmd, ok := commands[name]
	if !ok {
		msg := fmt.Sprintf("unknown command %q", name)
		if s := suggest(name, commandNames()); s != "" {
			msg += fmt.Sprintf(", did you mean %q?", s)
		}
		return errors.New(msg)
	}
	if cmd.needsPage && c.current == nil {
		return errors.New("no page open, try \"pages\"")
	}
	if len(args) < cmd.minArgs {
		return errors.Errorf("usage: %s", cmd.usage)
	}
	return cmd.run(c, ctx, args)
}

func (c *console) page(name string) (*page, bool) {
	for _, p := range c.pages {
		if p.schema.Collection == name || strings.EqualFold(p.schema.Title, name) {
			return p, true
		}
	}
	return nil, false
}

func (c *console) open(ctx context.Context, name string) error {
	p, ok := c.page(name)
	if !ok {
		names := make([]string, 0, len(c.pages))
		for _, p := range c.pages {
			names = append(names, p.schema.Collection)
		}
		msg := fmt.Sprintf("no page %q", name)
		if s := suggest(name, names); s != "" {
			msg += fmt.Sprintf(", did you mean %q?", s)
		}
		return errors.New(msg)
	}

	c.current = p
	c.printf("== %s ==\n", p.schema.Title)
	// the collection is fetched once, when its page is first shown
	var err error
	if p.ctl.View().Phase == resource.PhaseIdle {
		err = p.ctl.Load(ctx)
	}
	c.renderRecords(p.ctl.View())
	return err
}

// confirm asks before a record is removed. Anything but y or yes declines.
func (c *console) confirm(_ context.Context, rec record.Record) (bool, error) {
	title := rec.ID.String()
	if c.current != nil {
		title = c.current.schema.Describe(rec)
	}
	c.printf("Delete %s? [y/N] ", title)

	answer, ok := c.readLine()
	if !ok {
		return false, nil
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (c *console) recordByID(arg string) (record.Record, error) {
	id, err := record.ParseID(arg)
	if err != nil {
		return record.Record{}, errors.Errorf("invalid id %q", arg)
	}
	rec, ok := c.current.ctl.Find(id)
	if !ok {
		return record.Record{}, errors.Errorf("no %s #%d", c.current.schema.Collection, id)
	}
	return rec, nil
}
