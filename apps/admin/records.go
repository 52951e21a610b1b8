package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/services/sheets"
)

func (cli *commandLine) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export COLLECTION [FILE]",
		Short: "Write a collection to an xlsx workbook (default: COLLECTION.xlsx).",
		Args:  argsRange(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(args[0])
			if err != nil {
				return err
			}
			path := sheets.Filename(args[0])
			if len(args) > 1 {
				path = args[1]
			}

			recs, err := svc.List(context.Background())
			if err != nil {
				return err
			}

			f, err := os.Create(path)
			if err != nil {
				return errors.Wrap(err, "creating workbook")
			}
			if err = sheets.Export(f, svc.Schema(), recs); err != nil {
				_ = f.Close()
				return err
			}
			if err = f.Close(); err != nil {
				return errors.Wrap(err, "closing workbook")
			}
			cmd.Printf("%d %s exported to %s\n", len(recs), args[0], path)
			return nil
		},
	}
}

func (cli *commandLine) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import COLLECTION FILE",
		Short: "Create one record per row of an xlsx workbook; stops at the first invalid row.",
		Args:  argsRange(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.service(args[0])
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return errors.Wrap(err, "opening workbook")
			}
			defer func() { _ = f.Close() }()

			rows, err := sheets.Read(f, svc.Schema())
			if err != nil {
				return err
			}
			n, err := svc.Import(context.Background(), rows)
			cmd.Printf("%d/%d %s imported\n", n, len(rows), args[0])
			return err
		},
	}
}

func (cli *commandLine) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [COLLECTION]",
		Short: "Insert the initial records of a collection (default: subjects).",
		Args:  argsRange(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := academics.SubjectsCollection
			if len(args) > 0 {
				collection = args[0]
			}
			svc, err := cli.service(collection)
			if err != nil {
				return err
			}

			n, err := svc.Import(context.Background(), academics.Seed(collection))
			cmd.Printf("%d %s seeded\n", n, collection)
			return err
		},
	}
}
