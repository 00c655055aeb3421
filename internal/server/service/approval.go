package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var ErrConsoleClosed = errors.New("console input closed")

type Decision int

const (
	Denied Decision = iota
	Approved
)

func (d Decision) String() string {
	if d == Approved {
		return "approved"
	}
	return "denied"
}

// ApprovalRequest is what the operator is asked about.
type ApprovalRequest struct {
	Token       string
	Filename    string
	ClientAddr  string
	RequestedAt time.Time
}

// ApprovalSource decides whether a pending delete may proceed. Approve
// blocks until a decision is available. An error means no decision was
// made.
type ApprovalSource interface {
	Approve(ctx context.Context, req ApprovalRequest) (Decision, error)
}

// ApprovalFunc adapts an ordinary function to ApprovalSource.
type ApprovalFunc func(ctx context.Context, req ApprovalRequest) (Decision, error)

func (f ApprovalFunc) Approve(ctx context.Context, req ApprovalRequest) (Decision, error) {
	return f(ctx, req)
}

// ConsoleApprover asks the server operator on a terminal. Prompts are
// serialized, so each typed answer belongs to exactly one request; other
// delete requests wait for their turn.
type ConsoleApprover struct {
	in  io.Reader
	out io.Writer

	turn  chan struct{} // holds one token while a prompt is showing
	once  sync.Once
	lines chan string
}

func NewConsoleApprover(in io.Reader, out io.Writer) *ConsoleApprover {
	return &ConsoleApprover{
		in:    in,
		out:   out,
		turn:  make(chan struct{}, 1),
		lines: make(chan string),
	}
}

func (c *ConsoleApprover) readLines() {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}
	close(c.lines)
}

// Approve prints the request and waits for one line of input. Only "yes"
// (any case, surrounding space ignored) approves.
func (c *ConsoleApprover) Approve(ctx context.Context, req ApprovalRequest) (Decision, error) {
	c.once.Do(func() { go c.readLines() })

	// Wait for the current prompt to finish, unless the caller gives up.
	select {
	case c.turn <- struct{}{}:
	case <-ctx.Done():
		return Denied, ctx.Err()
	}
	defer func() { <-c.turn }()

	if err := ctx.Err(); err != nil {
		return Denied, err
	}

	// Discard anything typed while no prompt was showing.
	for drained := false; !drained; {
		select {
		case _, ok := <-c.lines:
			if !ok {
				return Denied, ErrConsoleClosed
			}
		default:
			drained = true
		}
	}

	fmt.Fprintf(c.out, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(c.out, "DELETE REQUEST from %s\n", req.ClientAddr)
	fmt.Fprintf(c.out, "File: %s\n", req.Filename)
	fmt.Fprintf(c.out, "Token: %s\n", req.Token)
	fmt.Fprint(c.out, "Allow deletion? (yes/no): ")

	select {
	case line, ok := <-c.lines:
		if !ok {
			fmt.Fprintln(c.out, "\nDelete request cancelled (console closed)")
			return Denied, ErrConsoleClosed
		}
		if strings.EqualFold(strings.TrimSpace(line), "yes") {
			return Approved, nil
		}
		fmt.Fprintln(c.out, "Delete request denied")
		return Denied, nil
	case <-ctx.Done():
		fmt.Fprintln(c.out, "\nDelete request withdrawn by client")
		return Denied, ctx.Err()
	}
}
