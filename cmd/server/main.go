package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "meetmap",
	Short:        "MeetMap backend: profiles, live locations and nearby users",
	Long:         `MeetMap serves the mobile client's account, location, nearby-user and favorites API plus the live map WebSocket.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, distanceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
