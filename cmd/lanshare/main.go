package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"lanshare/internal/client"
)

const usage = `usage: lanshare [-server URL] <command> [args]

commands:
  push <files...>   upload files to the share
  rm <name>         ask the server operator to delete a file
  audit <token>     show the recorded decisions for a delete token
`

func main() {
	server := flag.String("server", envOr("LANSHARE_SERVER", "http://localhost:8000"), "share server URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(*server)

	switch args[0] {
	case "push":
		files, err := client.ParseArgs(args[1:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		sent, err := c.Upload(ctx, files)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		rejected := 0
		for _, f := range sent {
			if !f.Stored {
				rejected++
				fmt.Printf("✗ %s: not stored by the server\n", f.Name)
				continue
			}
			fmt.Printf("✓ %s (%d bytes) blake2b=%s\n", f.Name, f.Size, f.Digest)
		}
		if rejected > 0 {
			os.Exit(1)
		}

	case "rm":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(2)
		}
		fmt.Printf("Waiting for the server operator to approve deleting %s...\n", args[1])
		resp, err := c.RequestDelete(ctx, args[1])
		if err != nil {
			var de *client.DeleteError
			if errors.As(err, &de) && de.Response.Token != "" {
				fmt.Fprintf(os.Stderr, "Error: %v (token %s)\n", err, de.Response.Token)
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}
		fmt.Printf("✓ %s: %s (token %s)\n", args[1], resp.Status, resp.Token)

	case "audit":
		if len(args) != 2 {
			flag.Usage()
			os.Exit(2)
		}
		entries, err := c.Audit(ctx, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, e := range entries {
			fmt.Printf("%s  %-9s  %s  from %s\n",
				e.DecidedAt.Local().Format("2006-01-02 15:04:05"), e.Decision, e.Filename, e.ClientAddr)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
