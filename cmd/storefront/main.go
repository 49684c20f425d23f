package main

import "storefront-backend/cmd/storefront/commands"

func main() {
	commands.Execute()
}
