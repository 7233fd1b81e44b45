package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
	"github.com/snailcrypt/snailcrypt-go/pkg/shareurl"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [envelope|share-link]",
	Short: "Show the unencrypted fields of an envelope",
	Long: `Show the version, lockdate, hint and filename of an envelope without
contacting the key-release service.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := readInput(cmd.InOrStdin(), args, "")
		if err != nil {
			return err
		}

		sealed, err := shareurl.Extract(input)
		if err != nil {
			return err
		}

		return runInspect(cmd.OutOrStdout(), sealed, time.Now())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(out io.Writer, sealed string, now time.Time) error {
	env, err := envelope.Parse(sealed)
	if env != nil {
		printField(out, "Version", env.Version.String())
		if !env.Lockdate.IsZero() {
			printField(out, "Lockdate", envelope.FormatLockdate(env.Lockdate))
			printField(out, "Status", lockdateStatus(env.Lockdate, now))
		}
		printField(out, "Hint", env.Hint)
		printField(out, "Filename", env.Filename)
		if env.Cipher != nil {
			printField(out, "Cipher", fmt.Sprintf("%d bytes", len(env.Cipher)))
		}
	}
	if err != nil {
		return fmt.Errorf("invalid envelope: %w", err)
	}
	return nil
}

func lockdateStatus(lockdate, now time.Time) string {
	if !lockdate.After(now) {
		return "released"
	}
	return fmt.Sprintf("locked for another %s", lockdate.Sub(now).Round(time.Second))
}
