package main

import "github.com/nexocrm/nexo-go/cmd/nexo/cmd"

func main() {
	cmd.Execute()
}
