package main

import (
	"errors"
	"fmt"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/core/resource"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf       *core.Config
	out        io.Writer
	backend    func(collection string) (resource.Backend, error)
	validate   *validator.Validate
	translator ut.Translator
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Masomo Records administration tasks.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return usage(cmd)
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.migrateCmd(),
		cli.createDBCmd(),
		cli.exportCmd(),
		cli.importCmd(),
		cli.seedCmd(),
		cli.tokenCmd(),
	)
	return root
}

// run executes the command line args, program name included.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.Execute()
}

func usage(cmd *cobra.Command) error {
	_ = cmd.Usage()
	return errHelp
}

// argsRange prints the usage instead of a cobra error when the count is off; max < 0 means no limit.
func argsRange(min, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || (max >= 0 && len(args) > max) {
			return usage(cmd)
		}
		return nil
	}
}

func (cli *commandLine) service(collection string) (*resource.Service, error) {
	schema, ok := academics.Lookup(collection)
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	backend, err := cli.backend(collection)
	if err != nil {
		return nil, err
	}
	return resource.NewService(schema, backend, cli.validate, cli.translator), nil
}
