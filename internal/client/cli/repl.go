package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

const helpText = `Commands:
  <text>                  send a message (or submit the edit being made)
  /join <room> [passkey]  enter a room; /join -p <room> prompts for the passkey
  /leave                  leave the room
  /reply <n>              reply to message n
  /edit <n> [text]        edit your message n
  /cancel                 stop replying or editing
  /delete <n>             delete your message n for everyone
  /hide <n>               hide message n on this device
  /unhide-all             show every hidden message again
  /menu <n>               show actions for message n
  /jump <n>               jump to the message that n replies to
  /up [k], /down [k]      scroll by k messages
  /newest                 jump to the newest message
  /export [file]          export the transcript
  /show                   redraw
  /quit                   leave the program`

// execIface is the command surface the REPL drives. App satisfies it.
type execIface interface {
	Join(ctx context.Context, roomID, passkey string, prompt bool) error
	Leave(ctx context.Context) error
	Say(ctx context.Context, text string) error
	Reply(ctx context.Context, ref string) error
	Edit(ctx context.Context, ref, text string) error
	Cancel(ctx context.Context) error
	Delete(ctx context.Context, ref string, confirm func() bool) error
	Hide(ctx context.Context, ref string) error
	UnhideAll(ctx context.Context) error
	Menu(ctx context.Context, ref string) error
	JumpToOriginal(ctx context.Context, ref string) error
	Scroll(ctx context.Context, delta int) error
	Newest(ctx context.Context) error
	Export(ctx context.Context, path string) error
	Show(ctx context.Context) error
}

// runREPL reads lines until EOF or /quit. Lines without a leading slash
// are messages. Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("rc %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			report(a.Say(ctx, line))
			continue
		}

		cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		rest = strings.TrimSpace(rest)
		args := strings.Fields(rest)
		arg := ""
		if len(args) > 0 {
			arg = args[0]
		}

		switch cmd {
		case "/help":
			printlnFn(helpText)

		case "/join":
			prompt := arg == "-p"
			if prompt {
				args = args[1:]
			}
			if len(args) == 0 {
				printlnFn("Usage: /join [-p] <room> [passkey]")
				continue
			}
			passkey := ""
			if len(args) > 1 {
				passkey = args[1]
			}
			report(a.Join(ctx, args[0], passkey, prompt))

		case "/leave":
			report(a.Leave(ctx))

		case "/reply":
			report(a.Reply(ctx, arg))

		case "/edit":
			_, text, _ := strings.Cut(rest, " ")
			report(a.Edit(ctx, arg, text))

		case "/cancel":
			report(a.Cancel(ctx))

		case "/delete":
			report(a.Delete(ctx, arg, confirmLine(scanner, "Delete this message for everyone?")))

		case "/hide":
			report(a.Hide(ctx, arg))

		case "/unhide-all":
			report(a.UnhideAll(ctx))

		case "/menu":
			report(a.Menu(ctx, arg))

		case "/jump":
			report(a.JumpToOriginal(ctx, arg))

		case "/up", "/down":
			k := 1
			if arg != "" {
				n, err := strconv.Atoi(arg)
				if err != nil || n < 1 {
					printlnFn("Usage: " + cmd + " [k]")
					continue
				}
				k = n
			}
			if cmd == "/down" {
				k = -k
			}
			report(a.Scroll(ctx, k))

		case "/newest":
			report(a.Newest(ctx))

		case "/export":
			report(a.Export(ctx, arg))

		case "/show":
			report(a.Show(ctx))

		case "/quit", "/exit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", err)
	}
}
