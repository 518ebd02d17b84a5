// gameserverctl -- CLI client for the Hytale game session server.
package main

import "github.com/hytale-oss/gameserver/cmd/gameserverctl/commands"

func main() {
	commands.Execute()
}
