package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/trezcool/masomo-records/core/record"
	"github.com/trezcool/masomo-records/core/resource"
)

func formatValue(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// renderRecords prints the collection as a table, or its loading state.
func (c *console) renderRecords(view resource.View) {
	switch view.Phase {
	case resource.PhaseIdle, resource.PhaseLoading:
		c.printf("(loading)\n")
		return
	case resource.PhaseLoadFailed:
		if len(view.Records) == 0 {
			c.printf("(could not load %s)\n", view.Schema.Collection)
			return
		}
	}
	if len(view.Records) == 0 {
		c.printf("(no %s)\n", view.Schema.Collection)
		return
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	header := []string{"ID"}
	for _, f := range view.Schema.Fields {
		header = append(header, f.Label)
	}
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, rec := range view.Records {
		row := []string{rec.ID.String()}
		for _, f := range view.Schema.Fields {
			row = append(row, formatValue(rec.Values[f.Name]))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

// renderDraft prints the edit form with the error of each field.
func (c *console) renderDraft(view resource.View) {
	if view.Draft == nil {
		return
	}
	title := "New " + strings.ToLower(view.Schema.Title)
	if view.Original != nil {
		title = fmt.Sprintf("Editing %s #%d", view.Schema.Describe(*view.Original), view.Draft.ID)
	}
	if view.Edit == resource.EditSubmitting {
		title += " (saving)"
	}
	c.printf("%s\n", title)

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for _, f := range view.Schema.Fields {
		label := f.Label
		if f.Required {
			label += " *"
		}
		line := fmt.Sprintf("  %s\t%s\t%s", label, f.Name, formatValue(view.Draft.Values[f.Name]))
		if hint := fieldHint(f); hint != "" {
			line += "\t(" + hint + ")"
		}
		if msg, ok := view.FieldErrors[f.Name]; ok {
			line += "\t<- " + msg
		}
		_, _ = fmt.Fprintln(tw, line)
	}
	_ = tw.Flush()

	// errors about fields the form does not show
	var others []string
	for name, msg := range view.FieldErrors {
		if _, ok := view.Schema.Field(name); !ok {
			others = append(others, name+": "+msg)
		}
	}
	sort.Strings(others)
	for _, msg := range others {
		c.printf("  %s\n", msg)
	}
}

func fieldHint(f record.Field) string {
	switch f.Type {
	case record.TypeEnum:
		return strings.Join(f.Options, "|")
	case record.TypeInteger:
		switch {
		case f.Min != nil && f.Max != nil:
			return fmt.Sprintf("%d-%d", *f.Min, *f.Max)
		case f.Min != nil:
			return fmt.Sprintf(">= %d", *f.Min)
		}
		return "number"
	}
	return ""
}
