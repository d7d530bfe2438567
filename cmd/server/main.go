package main

import "github.com/M-Abdul-RAFAY/anonymous-chat-app/cmd/server/cmd"

func main() {
	cmd.Execute()
}
