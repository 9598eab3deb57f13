package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/adityakqumar/RemoteScreen/internal/ui"
	"github.com/adityakqumar/RemoteScreen/internal/version"
)

var (
	flagDomain   string
	flagSTUN     string
	flagTURN     string
	flagTURNUser string
	flagTURNPass string
	flagInsecure bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "remotescreen",
	Short:   "Peer-to-peer remote control over WebRTC, paired with a one-time code",
	Long:    `RemoteScreen connects two devices for a remote control session using WebRTC. The target hosts a session identified by a short one-time code; the controller joins with that code and, once both sides consent and connect, sends typed input gestures that the target dispatches locally. Every accepted and denied action is recorded in a session activity log.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDomain, "domain", "d", "", "Custom relay domain")
	rootCmd.PersistentFlags().StringVarP(&flagSTUN, "stun", "s", "", "Custom STUN server")
	rootCmd.PersistentFlags().StringVarP(&flagTURN, "turn", "t", "", "Custom TURN server")
	rootCmd.PersistentFlags().StringVarP(&flagTURNUser, "turn-user", "u", "", "TURN username")
	rootCmd.PersistentFlags().StringVarP(&flagTURNPass, "turn-pass", "p", "", "TURN password")
	rootCmd.PersistentFlags().BoolVar(&flagInsecure, "insecure", false, "Use ws:// instead of wss://")
}
