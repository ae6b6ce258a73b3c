package main

import (
	"fmt"
	"os"

	"github.com/appship-labs/appship/cmd/build"
	"github.com/appship-labs/appship/cmd/inspect"
	"github.com/appship-labs/appship/cmd/ls"
	"github.com/appship-labs/appship/cmd/purge"
	"github.com/appship-labs/appship/cmd/push"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "appship",
	Short: "appship",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(build.Command)
	rootCmd.AddCommand(inspect.Command)
	rootCmd.AddCommand(ls.Command)
	rootCmd.AddCommand(purge.Command)
	rootCmd.AddCommand(push.Command)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
