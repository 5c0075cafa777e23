package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pair-tasks/internal/pairing"
)

// PairInfo describes an account and the pair it belongs to.
type PairInfo struct {
	Account pairing.Account `json:"account"`
	Partner pairing.Account `json:"partner"`
	PairID  pairing.PairID  `json:"pair_id"`
}

func newPairInfo(a pairing.Account) PairInfo {
	return PairInfo{Account: a, Partner: pairing.Partner(a), PairID: pairing.PairOf(a)}
}

func newPairCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Generate or inspect account pairs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Generate two linked account numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, cmd, func(a *app, out *OutputFormatter) error {
				mine, _ := a.gen.GeneratePair()
				info := newPairInfo(mine)
				return out.Print(info, fmt.Sprintf("account: %s\npartner: %s\npair:    %s", info.Account, info.Partner, info.PairID))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <account>",
		Short: "Show the partner and pair of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(opts, cmd)
			account, err := parseAccountArg(args[0])
			if err != nil {
				return out.Fail(err)
			}
			info := newPairInfo(account)
			return out.Print(info, fmt.Sprintf("account: %s\npartner: %s\npair:    %s", info.Account, info.Partner, info.PairID))
		},
	})

	return cmd
}
