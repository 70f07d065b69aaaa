// chordctl is a small operator CLI over the chord library: check the bot's
// identity, send a message, or exercise the URL encoder.
package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chordbot/chord"
	"github.com/chordbot/chord/config"
	"github.com/chordbot/chord/logging"
	"github.com/chordbot/chord/models"
	"github.com/chordbot/chord/rest"
)

var (
	cfgFile string
	token   string
	verbose bool

	logger *logging.Logger
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chordctl",
		Short: "chordctl - operator CLI for the chord Discord client library",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefault()
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/chord/chordrc)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bot token (overrides config file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newMeCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newEncodeCmd())
	rootCmd.AddCommand(newInitCmd())
	return rootCmd
}

// loadConfig resolves the effective config from flags and the config file.
func loadConfig() (*config.Config, error) {
	if token != "" {
		return config.New(token), nil
	}
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("no --token given and config unusable: %w", err)
	}
	return cfg, nil
}

// withCluster runs fn against a live cluster, waiting for fn to release the
// returned WaitGroup before shutting the queue down.
func withCluster(fn func(*chord.Cluster, *sync.WaitGroup)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cluster, err := chord.New(cfg, logger)
	if err != nil {
		return err
	}
	defer cluster.Close()

	var wg sync.WaitGroup
	fn(cluster, &wg)
	wg.Wait()
	return nil
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Fetch the bot's own user record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCluster(func(cluster *chord.Cluster, wg *sync.WaitGroup) {
				wg.Add(1)
				cluster.CurrentUser(func(user *models.User, rv rest.Completion) {
					defer wg.Done()
					if user == nil {
						logger.Errorf("request failed: status=%d error=%s", rv.Status, rv.Error)
						return
					}
					fmt.Printf("%s#%04d (id %s, bot=%v)\n",
						user.Username, user.Discriminator, user.ID, user.IsBot())
				})
			})
		},
	}
}

func newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <channel-id> <message>",
		Short: "Send a message to a channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channelID, err := models.ParseSnowflake(args[0])
			if err != nil {
				return err
			}
			return withCluster(func(cluster *chord.Cluster, wg *sync.WaitGroup) {
				wg.Add(1)
				cluster.CreateMessage(channelID, args[1], func(rv rest.Completion) {
					defer wg.Done()
					if rv.Error != rest.ErrSuccess {
						logger.Errorf("transport failure: %s", rv.Error)
						return
					}
					if rv.Status >= 400 {
						logger.Errorf("message rejected: status %d", rv.Status)
						return
					}
					logger.Infof("message sent (status %d)", rv.Status)
				})
			})
		},
	}
}

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <value>",
		Short: "Percent-encode a URL parameter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(rest.URLEncode(args[0]))
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file, prompting for the bot token",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(os.Stderr, "Bot token: ")
			raw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("read token: %w", err)
			}
			cfg := config.New(string(raw))
			if err := cfg.Validate(); err != nil {
				return err
			}

			path := cfgFile
			if path == "" {
				path, err = config.Path()
				if err != nil {
					return err
				}
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			logger.Infof("config written to %s", path)
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
