package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/stepup/cmd/app/commands"
	"github.com/allisson/stepup/internal/app"
	"github.com/allisson/stepup/internal/config"
)

func getEnforcementCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "check",
			Usage: "Evaluate whether an operation requires fresh two-factor verification",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "operation",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Operation kind slug (see list-operations)",
				},
				&cli.StringFlag{
					Name:     "principal",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Principal ID of the acting administrator",
				},
				&cli.StringFlag{
					Name:     "session",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Session ID scoping the verification ledger",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				enforcementUseCase, err := container.EnforcementUseCase()
				if err != nil {
					return err
				}

				return commands.RunCheck(
					ctx,
					enforcementUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("operation"),
					cmd.String("principal"),
					cmd.String("session"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-operations",
			Usage: "List the sensitive operation kinds and their policies",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunListOperations(commands.DefaultIO().Writer, cmd.String("format"))
			},
		},
	}
}
