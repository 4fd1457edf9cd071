// Package main provides the entrypoint for the feishu-notify cli.
package main

import (
	"fmt"
	"os"

	"github.com/kart-io/feishu-notifier/cmd/feishu-notify/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
