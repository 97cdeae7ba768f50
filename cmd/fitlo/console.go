package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fitlo/fitlo/internal/logger"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

// console handles operator commands typed into the server's terminal
type console struct {
	log  logger.Logger
	out  io.Writer
	open func() error // opens the leaderboard in a browser
	quit context.CancelFunc
}

// nextLevel cycles debug -> info -> warn -> error -> debug
func nextLevel(current slog.Level) slog.Level {
	switch current {
	case slog.LevelDebug:
		return slog.LevelInfo
	case slog.LevelInfo:
		return slog.LevelWarn
	case slog.LevelWarn:
		return slog.LevelError
	case slog.LevelError:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func (c *console) printHelp() {
	fmt.Fprintf(c.out, "\n%s%s  Console commands (type and press Enter):%s\n", bold, green, reset)
	fmt.Fprintf(c.out, "    %so%s      - Open leaderboard in browser\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sl%s      - Cycle log level (debug, info, warn, error)\n", cyan, reset)
	fmt.Fprintf(c.out, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(c.out, "    %s?%s      - Show this help\n\n", cyan, reset)
}

// handle runs one command and reports whether the console should stop reading
func (c *console) handle(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
	case "o":
		fmt.Fprintf(c.out, "%sOpening leaderboard in browser...%s\n", cyan, reset)
		if err := c.open(); err != nil {
			fmt.Fprintf(c.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			c.log.EnableHTTPLogging()
			fmt.Fprintf(c.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		level := nextLevel(c.log.GetLevel())
		c.log.SetLevel(level)
		fmt.Fprintf(c.out, "%sLog level: %s%s%s\n", green, yellow, strings.ToLower(level.String()), reset)
	case "q", "quit", "exit":
		fmt.Fprintf(c.out, "%sShutting down server...%s\n", yellow, reset)
		c.quit()
		return true
	case "?", "help":
		c.printHelp()
	default:
		fmt.Fprintf(c.out, "Unknown command %q, type ? for help\n", input)
	}
	return false
}

// run reads commands line by line until quit, EOF or ctx is done
func (c *console) run(ctx context.Context, in io.Reader) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok || c.handle(line) {
				return
			}
		}
	}
}
