package main

import "github.com/xenocrm/crm-gateway/cmd"

func main() {
	cmd.Execute()
}
