package cmd

import "github.com/spf13/cobra"

func RegisterCommands(root *cobra.Command) {
	root.AddCommand(versionCmd)
	root.AddCommand(clipboardServeCmd)
	root.AddCommand(offscreenServeCmd)

	root.AddCommand(copyCmd)
	root.AddCommand(tabsCmd)
	root.AddCommand(formatsCmd)
	root.AddCommand(historyCmd)
	root.AddCommand(configCmd)
	root.AddCommand(serveCmd)

	formatsCmd.AddCommand(
		formatsListCmd,
		formatsEnableCmd,
		formatsDisableCmd,
	)

	historyCmd.AddCommand(
		historyListCmd,
		historyClearCmd,
	)

	configCmd.AddCommand(
		configShowCmd,
		configPathCmd,
		configGetCmd,
		configSetCmd,
		configUnsetCmd,
	)
}
