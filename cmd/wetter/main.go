package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/alexivanou/wetter-proxy/internal/client"
	"go.uber.org/zap"
)

const usage = `Type a city name to get suggestions.
  /N        pick suggestion N and show its weather
  /search   look up the weather for the current text (an empty line does the same)
  /quit     exit`

func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "Base URL of the weather proxy")
		debounce = flag.Duration("debounce", client.DefaultDebounce, "Autocomplete debounce interval")
		timeout  = flag.Duration("timeout", 10*time.Second, "HTTP timeout for proxy requests")
		verbose  = flag.Bool("v", false, "Log debug output to stderr")
	)
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		logger = l
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out sync.Mutex
	proxy := client.NewProxyClient(*server, &http.Client{Timeout: *timeout})
	ctrl := client.NewController(proxy,
		client.WithDebounce(*debounce),
		client.WithLogger(logger),
		client.WithOnChange(func(s client.State) {
			out.Lock()
			defer out.Unlock()
			render(os.Stdout, s)
		}),
	)
	defer ctrl.Close()

	fmt.Println(usage)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !handle(ctx, ctrl, line) {
				return
			}
		}
	}
}

// handle processes one input line and reports whether to keep going
func handle(ctx context.Context, ctrl *client.Controller, line string) bool {
	switch cmd := strings.TrimSpace(line); {
	case cmd == "/quit":
		return false
	case cmd == "" || cmd == "/search":
		ctrl.Search(ctx)
	case strings.HasPrefix(cmd, "/"):
		n, err := strconv.Atoi(cmd[1:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
			return true
		}
		if err := ctrl.Select(ctx, n-1); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	default:
		ctrl.Input(line)
	}
	return true
}

// render prints the status line for the current phase followed by any suggestions
func render(w io.Writer, s client.State) {
	switch s.Phase() {
	case client.PhaseLoading:
		fmt.Fprintf(w, "Loading weather for %q...\n", s.Text)
	case client.PhaseShowingError:
		fmt.Fprintln(w, "Error:", s.Error)
	case client.PhaseShowingResult:
		r := s.Weather
		fmt.Fprintf(w, "%s, %s: %.1f°C, %s\n", r.Location, r.Country, r.TempC, r.Condition)
	}
	for i, sug := range s.Suggestions {
		fmt.Fprintf(w, "  /%d  %s, %s\n", i+1, sug.City, sug.Country)
	}
}
