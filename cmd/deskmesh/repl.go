package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/muesli/termenv"

	"github.com/deskmesh/deskmesh"
	"github.com/deskmesh/deskmesh/driver"
)

// repl runs an interactive prompt loop over desk sessions. Commands: exit
// quits, reset opens a fresh session, clear wipes the screen.
func repl(desk *deskmesh.Desk, banner string) error {
	p := termenv.ColorProfile()
	promptStyle := termenv.String("you> ").Foreground(p.Color("#34d399")).Bold()
	deskStyle := func(s string) termenv.Style {
		return termenv.String(s).Foreground(p.Color("#818cf8"))
	}
	routeStyle := func(s string) termenv.Style {
		return termenv.String(s).Foreground(p.Color("#9ca3af")).Italic()
	}

	newSession := func() (*driver.Session, error) {
		return desk.NewSession()
	}

	sess, err := newSession()
	if err != nil {
		return err
	}
	defer func() { sess.End() }()

	fmt.Println(deskStyle(banner))
	fmt.Println(routeStyle("Type 'exit' to quit, 'reset' for a fresh session, 'clear' to clear the screen."))

	reader := bufio.NewReader(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print(promptStyle)

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}

		input := strings.TrimSpace(line)
		switch input {
		case "":
			continue
		case "exit", "quit":
			fmt.Println(deskStyle("Bye!"))
			return nil
		case "clear":
			termenv.ClearScreen()
			continue
		case "reset":
			sess.End()
			sess, err = newSession()
			if err != nil {
				return err
			}
			fmt.Println(routeStyle("Session reset."))
			continue
		}

		reply, err := sess.Submit(ctx, input)
		if err != nil {
			fmt.Println(termenv.String("error: " + err.Error()).Foreground(p.Color("#f87171")))
			continue
		}

		if decision, ok := sess.LastDecision(); ok && decision.Routed() {
			fmt.Println(routeStyle("[" + decision.Target + "]"))
		}
		fmt.Println(deskStyle("desk> " + reply))
	}
}
