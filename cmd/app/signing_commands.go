package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vouch/cmd/app/commands"
	"github.com/allisson/vouch/internal/signature/signer"
)

func getSigningCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "sign-transaction",
			Usage: "Sign a transaction locally with a private key and its video statement",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "private-key",
					Aliases:  []string{"k"},
					Required: true,
					Usage:    "Path to the PEM encoded RSA private key",
				},
				&cli.StringFlag{
					Name:     "video",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Path to the video statement file",
				},
				&cli.StringFlag{
					Name:     "owner",
					Required: true,
					Usage:    "Owner identity",
				},
				&cli.StringFlag{
					Name:     "recipient",
					Required: true,
					Usage:    "Recipient identity",
				},
				&cli.StringFlag{
					Name:     "amount",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Amount as a decimal with at most two fractional digits",
				},
				&cli.IntFlag{
					Name:    "validity-months",
					Aliases: []string{"m"},
					Value:   12,
					Usage:   "Validity window in months (1, 3, 6 or 12)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunSignTransaction(
					signer.NewRSAPSSSigner(),
					commands.DefaultIO().Writer,
					commands.SignTransactionInput{
						PrivateKeyPath: cmd.String("private-key"),
						VideoPath:      cmd.String("video"),
						OwnerID:        cmd.String("owner"),
						RecipientID:    cmd.String("recipient"),
						Amount:         cmd.String("amount"),
						ValidityMonths: int(cmd.Int("validity-months")),
					},
					cmd.String("format"),
				)
			},
		},
	}
}
