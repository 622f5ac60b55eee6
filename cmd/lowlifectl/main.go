// Command lowlifectl runs the bot's maintenance jobs: cutting releases from
// git history, posting updates and syncing slash commands.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
