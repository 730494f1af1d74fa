// Command kvs-client issues one Set, Get, or Remove request against a
// kvs-server and prints the result. Argument parsing conventions, help
// text, and exit codes are an external collaborator per §1 of the
// spec; this main exists only to wire internal/client to a minimal
// command line, matching the teacher's cmd/server/main.go minimalism.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aleksandarhr/kvs/internal/client"
	"github.com/aleksandarhr/kvs/pkg/kvserrors"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4000", "address of the kvs server")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: kvs-client -addr <addr> <set|get|rm> <key> [value]")
		os.Exit(1)
	}

	c, err := client.Connect(*addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer c.Close()

	cmd, key := args[0], args[1]
	switch cmd {
	case "set":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: kvs-client set <key> <value>")
			os.Exit(1)
		}
		if err := c.Set(key, args[2]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

	case "get":
		value, ok, err := c.Get(key)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("Key not found")
			return
		}
		fmt.Println(value)

	case "rm":
		if err := c.Remove(key); err != nil {
			// The server only sends a display string across the wire
			// (kvserrors.StringError), so a missing key is recognized by
			// message rather than by sentinel identity here.
			if err.Error() == kvserrors.ErrKeyNotFound.Error() {
				fmt.Println("Key not found")
				os.Exit(1)
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		os.Exit(1)
	}
}
