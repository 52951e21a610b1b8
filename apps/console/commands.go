package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/masomo-records/core/record"
)

type command struct {
	usage     string
	help      string
	minArgs   int
	needsPage bool
	run       func(c *console, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	// assigned in init, cmdHelp reads the table
	commands = map[string]command{
		"pages":   {usage: "pages", help: "list the pages", run: cmdPages},
		"open":    {usage: "open PAGE", help: "show a page", minArgs: 1, run: cmdOpen},
		"list":    {usage: "list", help: "show the records of the page", needsPage: true, run: cmdList},
		"reload":  {usage: "reload", help: "fetch the records again", needsPage: true, run: cmdReload},
		"new":     {usage: "new", help: "start a new record", needsPage: true, run: cmdNew},
		"edit":    {usage: "edit ID", help: "edit a record", minArgs: 1, needsPage: true, run: cmdEdit},
		"set":     {usage: "set FIELD [VALUE...]", help: "change a field of the edited record", minArgs: 1, needsPage: true, run: cmdSet},
		"show":    {usage: "show", help: "show the edited record", needsPage: true, run: cmdShow},
		"diff":    {usage: "diff", help: "compare the edited record with the saved one", needsPage: true, run: cmdDiff},
		"save":    {usage: "save", help: "save the edited record", needsPage: true, run: cmdSave},
		"cancel":  {usage: "cancel", help: "discard the edited record", needsPage: true, run: cmdCancel},
		"delete":  {usage: "delete ID", help: "delete a record, after confirmation", minArgs: 1, needsPage: true, run: cmdDelete},
		"dismiss": {usage: "dismiss", help: "clear the error message", needsPage: true, run: cmdDismiss},
		"help":    {usage: "help", help: "show this help", run: cmdHelp},
		"quit":    {usage: "quit", help: "leave the console", run: cmdQuit},
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// suggest returns the candidate closest to s, or "" when none is close enough.
func suggest(s string, candidates []string) string {
	const minRatio = 0.7

	var best string
	var bestRatio float64
	for _, cand := range candidates {
		ratio := difflib.NewMatcher(strings.Split(s, ""), strings.Split(cand, "")).Ratio()
		if ratio >= minRatio && ratio > bestRatio {
			best, bestRatio = cand, ratio
		}
	}
	return best
}

func cmdPages(c *console, _ context.Context, _ []string) error {
	for _, p := range c.pages {
		marker := " "
		if p == c.current {
			marker = "*"
		}
		c.printf("%s %-10s %s\n", marker, p.schema.Collection, p.schema.Title)
	}
	return nil
}

func cmdOpen(c *console, ctx context.Context, args []string) error {
	return c.open(ctx, args[0])
}

func cmdList(c *console, _ context.Context, _ []string) error {
	c.renderRecords(c.current.ctl.View())
	return nil
}

func cmdReload(c *console, ctx context.Context, _ []string) error {
	err := c.current.ctl.Load(ctx)
	c.renderRecords(c.current.ctl.View())
	return err
}

func cmdNew(c *console, _ context.Context, _ []string) error {
	if err := c.current.ctl.BeginCreate(); err != nil {
		return err
	}
	c.renderDraft(c.current.ctl.View())
	return nil
}

func cmdEdit(c *console, _ context.Context, args []string) error {
	rec, err := c.recordByID(args[0])
	if err != nil {
		return err
	}
	if err = c.current.ctl.BeginEdit(rec); err != nil {
		return err
	}
	c.renderDraft(c.current.ctl.View())
	return nil
}

func cmdSet(c *console, _ context.Context, args []string) error {
	name, value := args[0], strings.Join(args[1:], " ")
	err := c.current.ctl.UpdateDraftField(name, value)
	if errors.Cause(err) == record.ErrUnknownField {
		if s := suggest(name, c.current.schema.FieldNames()); s != "" {
			return errors.Errorf("%v, did you mean %q?", err, s)
		}
	}
	return err
}

func cmdShow(c *console, _ context.Context, _ []string) error {
	view := c.current.ctl.View()
	if view.Draft == nil {
		return errors.New("no record is being edited")
	}
	c.renderDraft(view)
	return nil
}

func cmdDiff(c *console, _ context.Context, _ []string) error {
	view := c.current.ctl.View()
	if view.Draft == nil {
		return errors.New("no record is being edited")
	}

	var saved record.Values
	from := "new record"
	if view.Original != nil {
		saved = view.Original.Values
		from = view.Schema.Describe(*view.Original)
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        formLines(view.Schema, saved),
		B:        formLines(view.Schema, view.Draft.Values),
		FromFile: from,
		ToFile:   "draft",
		Context:  len(view.Schema.Fields),
	})
	if err != nil {
		return errors.Wrap(err, "computing diff")
	}
	if diff == "" {
		c.printf("no changes\n")
		return nil
	}
	c.printf("%s", diff)
	return nil
}

func cmdSave(c *console, ctx context.Context, _ []string) error {
	if err := c.current.ctl.Submit(ctx); err != nil {
		view := c.current.ctl.View()
		if view.Draft != nil {
			c.renderDraft(view)
		}
		return err
	}
	c.printf("saved\n")
	c.renderRecords(c.current.ctl.View())
	return nil
}

func cmdCancel(c *console, _ context.Context, _ []string) error {
	return c.current.ctl.Cancel()
}

func cmdDelete(c *console, ctx context.Context, args []string) error {
	rec, err := c.recordByID(args[0])
	if err != nil {
		return err
	}
	before := len(c.current.ctl.View().Records)
	if err = c.current.ctl.Remove(ctx, rec); err != nil {
		return err
	}
	view := c.current.ctl.View()
	if len(view.Records) == before {
		c.printf("not deleted\n")
		return nil
	}
	c.printf("deleted\n")
	c.renderRecords(view)
	return nil
}

func cmdDismiss(c *console, _ context.Context, _ []string) error {
	c.current.ctl.DismissError()
	return nil
}

func cmdHelp(c *console, _ context.Context, _ []string) error {
	for _, name := range commandNames() {
		cmd := commands[name]
		c.printf("  %-22s %s\n", cmd.usage, cmd.help)
	}
	return nil
}

func cmdQuit(*console, context.Context, []string) error {
	return errQuit
}

// formLines renders vals as one "field: value" line per schema field.
func formLines(s record.Schema, vals record.Values) []string {
	lines := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		lines = append(lines, fmt.Sprintf("%s: %s\n", f.Name, formatValue(vals[f.Name])))
	}
	return lines
}
