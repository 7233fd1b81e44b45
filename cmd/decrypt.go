package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/snailcrypt/snailcrypt-go/pkg/client"
	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
	"github.com/snailcrypt/snailcrypt-go/pkg/envelope/keyfetch"
	"github.com/snailcrypt/snailcrypt-go/pkg/pathutils"
	"github.com/snailcrypt/snailcrypt-go/pkg/shareurl"
)

type decryptOptions struct {
	Wait    bool
	WaitMax time.Duration
	Output  string
}

var decryptOpts decryptOptions

// newWaitBackOff returns the back off used between attempts of `decrypt --wait`.
var newWaitBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Second
	b.MaxInterval = 10 * time.Minute
	return b
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt [envelope|share-link]",
	Short: "Decrypt an envelope whose lockdate has passed",
	Long: `Decrypt an envelope, or the envelope carried by a share link.

The envelope is taken from the argument or from stdin. The hint and filename
are printed to stderr even when the message cannot be decrypted yet. With
--wait, decryption is retried until the private key has been released.`,
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

		c, err := newClient(cfg, "auto")
		if err != nil {
			return err
		}

		return runDecrypt(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), c, decryptOpts, sealed)
	},
}

func init() {
	rootCmd.AddCommand(decryptCmd)
	decryptCmd.Flags().BoolVarP(
		&decryptOpts.Wait,
		"wait",
		"w",
		false,
		"Keep retrying until the private key of the lockdate has been released.",
	)
	decryptCmd.Flags().DurationVar(
		&decryptOpts.WaitMax,
		"wait-max",
		24*time.Hour,
		"Give up waiting after this long (given as XhYmZs).",
	)
	decryptCmd.Flags().StringVarP(
		&decryptOpts.Output,
		"output",
		"o",
		"",
		"Write the plaintext to this file instead of stdout.",
	)
}

func runDecrypt(ctx context.Context, out, errOut io.Writer, c client.Client, opts decryptOptions, sealed string) error {
	logger := klog.FromContext(ctx).WithName("decrypt")

	decrypt := func() (*client.DecryptResult, error) {
		result, err := c.Decrypt(ctx, sealed)
		if err != nil && !errors.Is(err, keyfetch.ErrKeyNotReleased) {
			return nil, backoff.Permanent(err)
		}
		return result, err
	}

	var result *client.DecryptResult
	var err error
	if opts.Wait {
		if lockdate, lerr := c.LockdateFromEnvelope(sealed); lerr == nil {
			logger.Info("Waiting for the private key to be released", "lockdate", envelope.FormatLockdate(lockdate))
		}

		result, err = backoff.Retry(ctx, decrypt,
			backoff.WithBackOff(newWaitBackOff()),
			backoff.WithMaxElapsedTime(opts.WaitMax),
			backoff.WithNotify(func(err error, next time.Duration) {
				logger.Info("Private key not released yet, retrying", "in", next.Round(time.Second))
			}),
		)
	} else {
		result, err = c.Decrypt(ctx, sealed)
	}

	if err != nil {
		var decryptErr *client.DecryptError
		if errors.As(err, &decryptErr) {
			printField(errOut, "Hint", decryptErr.Hint)
			printField(errOut, "Filename", decryptErr.Filename)
		}
		if errors.Is(err, keyfetch.ErrKeyNotReleased) {
			if lockdate, lerr := c.LockdateFromEnvelope(sealed); lerr == nil {
				warnColor.Fprintf(errOut, "This message can be decrypted after %s.\n", envelope.FormatLockdate(lockdate))
			}
		}
		return fmt.Errorf("failed to decrypt: %w", err)
	}

	printField(errOut, "Hint", result.Hint)
	printField(errOut, "Filename", result.Filename)

	if opts.Output != "" {
		return writeOutput(pathutils.ExpandHome(opts.Output), result.Plaintext)
	}

	_, err = io.WriteString(out, result.Plaintext)
	return err
}

// writeOutput replaces the content of path with plaintext. It is only called once
// decryption succeeded, so a failed decrypt never touches an existing file.
func writeOutput(path, plaintext string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}

	if _, err := io.WriteString(f, plaintext); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
