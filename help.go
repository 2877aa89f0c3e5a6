package main

import (
	"fmt"
)

func executeHelp(cmd *debugCommand) {

	if cmd == nil {
		for _, c := range debugCommands {
			fmt.Println(commandName(&c))
		}
		fmt.Println("(an empty line repeats step or cont)")
		return
	}

	fmt.Printf("%s: %s\n", commandName(cmd), cmd.help)
}

func commandName(c *debugCommand) string {

	if c.alias == "" {
		return c.name
	}

	return fmt.Sprintf("%s (%s)", c.name, c.alias)
}
