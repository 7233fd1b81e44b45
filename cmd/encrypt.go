package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/snailcrypt/snailcrypt-go/pkg/client"
	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
	"github.com/snailcrypt/snailcrypt-go/pkg/logs"
	"github.com/snailcrypt/snailcrypt-go/pkg/shareurl"
)

type encryptOptions struct {
	Lockdate      string
	In            time.Duration
	Hint          string
	Filename      string
	Input         string
	ClientVersion string
	Share         bool
}

var encryptOpts encryptOptions

var encryptCmd = &cobra.Command{
	Use:   "encrypt [plaintext]",
	Short: "Encrypt a message until a lockdate",
	Long: `Encrypt a message with the public key of a lockdate and print the envelope.

The message is taken from the argument, from --input, or from stdin. The
envelope can only be decrypted once the lockdate has passed.`,
	Example: `  snailcrypt encrypt --lockdate 2030-01-01T00:00:00+0100 "happy new year"
  snailcrypt encrypt --in 72h --hint "for your birthday" --input letter.txt --filename letter.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plaintext, err := readInput(cmd.InOrStdin(), args, encryptOpts.Input)
		if err != nil {
			return err
		}

		lockdate, err := encryptOpts.lockdate(time.Now())
		if err != nil {
			return err
		}

		c, err := newClient(cfg, encryptOpts.ClientVersion)
		if err != nil {
			return err
		}

		return runEncrypt(cmd.Context(), cmd.OutOrStdout(), c, encryptOpts, plaintext, lockdate)
	},
}

func init() {
	rootCmd.AddCommand(encryptCmd)
	encryptCmd.Flags().StringVarP(
		&encryptOpts.Lockdate,
		"lockdate",
		"l",
		"",
		"Date after which the message can be decrypted, e.g. 2030-01-01T00:00:00+0100.",
	)
	encryptCmd.Flags().DurationVar(
		&encryptOpts.In,
		"in",
		0,
		"Lockdate relative to now (given as XhYmZs). Alternative to --lockdate.",
	)
	encryptCmd.Flags().StringVar(
		&encryptOpts.Hint,
		"hint",
		"",
		"Unencrypted hint stored next to the message.",
	)
	encryptCmd.Flags().StringVar(
		&encryptOpts.Filename,
		"filename",
		"",
		"Unencrypted filename stored next to the message.",
	)
	encryptCmd.Flags().StringVarP(
		&encryptOpts.Input,
		"input",
		"i",
		"",
		"Read the message from this file, or from stdin if set to -.",
	)
	encryptCmd.Flags().StringVar(
		&encryptOpts.ClientVersion,
		"client-version",
		"",
		`Envelope version to produce: "auto", "1", "2" or "3". Defaults to the configuration file.`,
	)
	encryptCmd.Flags().BoolVar(
		&encryptOpts.Share,
		"share",
		false,
		"Print a web app share link instead of the bare envelope.",
	)
}

// lockdate resolves --lockdate or --in. The result is truncated to whole seconds since
// envelopes do not carry fractions.
func (o encryptOptions) lockdate(now time.Time) (time.Time, error) {
	switch {
	case o.Lockdate != "" && o.In != 0:
		return time.Time{}, fmt.Errorf("--lockdate and --in cannot be used together")
	case o.Lockdate != "":
		return parseLockdate(o.Lockdate)
	case o.In > 0:
		return now.Add(o.In).Truncate(time.Second), nil
	case o.In < 0:
		return time.Time{}, fmt.Errorf("--in must be positive, got %s", o.In)
	}
	return time.Time{}, fmt.Errorf("a lockdate is required: set --lockdate or --in")
}

func runEncrypt(ctx context.Context, out io.Writer, c client.Client, opts encryptOptions, plaintext string, lockdate time.Time) error {
	logger := klog.FromContext(ctx).WithName("encrypt")

	sealed, err := c.Encrypt(ctx, client.EncryptArgs{
		Plaintext: plaintext,
		Lockdate:  lockdate,
		Hint:      opts.Hint,
		Filename:  opts.Filename,
	})
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}

	logger.V(logs.Debug).Info("encrypted message", "lockdate", envelope.FormatLockdate(lockdate), "envelopeSize", len(sealed))

	if opts.Share {
		link, err := shareurl.Build(cfg.ShareURL, sealed)
		if err != nil {
			return err
		}
		sealed = link
	}

	_, err = fmt.Fprintln(out, sealed)
	return err
}
