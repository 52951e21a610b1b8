package main

import (
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-records/apps/api/echo"
)

func (cli *commandLine) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token SUBJECT",
		Short: "Mint an API token for a client (console, remote storage, ...).",
		Args:  argsRange(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			token, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, args[0], name))
			if err != nil {
				return err
			}
			cmd.Println(token)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Display name of the client")
	return cmd
}
