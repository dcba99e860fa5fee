package main

import (
	"sustechcourse-backend/cmd/sustechcourse-cli/commands"
	"sustechcourse-backend/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
