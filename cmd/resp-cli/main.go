// Command resp-cli is a small example program demonstrating how to wire
// package transport, package client, and package commands together
// against a real RESP server. It is not part of the library's public
// contract.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aravinth/respwire/client"
	"github.com/aravinth/respwire/commands"
	"github.com/aravinth/respwire/internal/metrics"
	"github.com/aravinth/respwire/resp"
	"github.com/aravinth/respwire/transport"
)

func main() {
	host := flag.String("host", "127.0.0.1", "RESP server host")
	port := flag.Int("port", 6379, "RESP server port")
	name := flag.String("name", "resp-cli", "client label used for logs and metrics")
	dialTimeout := flag.Int("dial-timeout", 5, "dial timeout in seconds")
	metricsPort := flag.Int("metrics-port", 0, "Prometheus metrics HTTP port (0 = disabled)")
	flag.Parse()

	addr := fmt.Sprintf("%s:%d", *host, *port)

	fmt.Print(`
 _ __ ___  ___ _ ____      _(_)_ __ ___
| '__/ _ \/ __| '_ \ \ /\ / / | '__/ _ \
| | |  __/\__ \ |_) \ V  V /| | | |  __/
|_|  \___||___/ .__/ \_/\_/ |_|_|  \___|
              |_|
`)
	log.Printf("starting resp-cli")
	log.Printf("  addr:         %s", addr)
	log.Printf("  name:         %s", *name)
	log.Printf("  dial-timeout: %ds", *dialTimeout)
	if *metricsPort > 0 {
		log.Printf("  metrics-port: %d", *metricsPort)
	}

	var collector *metrics.Collector
	var metricsSrv *http.Server
	if *metricsPort > 0 {
		collector = metrics.NewCollector("respwire")
		metrics.Register(collector)
		metricsSrv = metrics.StartHTTPServer(*metricsPort)
	}

	tconn := transport.NewConn(transport.Config{
		Addr:        addr,
		DialTimeout: time.Duration(*dialTimeout) * time.Second,
	})

	var opts []client.Option
	opts = append(opts, client.WithName(*name))
	if collector != nil {
		opts = append(opts, client.WithMetrics(collector))
	}
	rc := client.NewClient(tconn.WriteFunc(), opts...)
	tconn.Start(rc)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received signal %s, shutting down...", sig)
		cancel()
	}()

	log.Println("connecting in the background; type commands (GET key / SET key value / PING), Ctrl-D to quit")
	go func() {
		runREPL(rc)
		cancel()
	}()

	<-ctx.Done()

	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		metrics.ShutdownHTTPServer(shutdownCtx, metricsSrv)
		shutdownCancel()
	}
	tconn.Close()
	log.Println("shutdown complete")
}

// runREPL reads whitespace-separated commands from stdin and prints
// replies as they arrive. It is intentionally minimal: no history, no
// line editing, just enough to exercise the wiring end to end.
func runREPL(rc *client.Client) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := dispatchLine(rc, fields); err != nil {
			log.Printf("error: %v", err)
		}
	}
}

func dispatchLine(rc *client.Client, fields []string) error {
	print := func(v resp.Value) { fmt.Println(v.String()) }
	cmd := strings.ToUpper(fields[0])
	switch cmd {
	case "PING":
		return commands.Ping(rc, print)
	case "GET":
		if len(fields) != 2 {
			return fmt.Errorf("usage: GET key")
		}
		return commands.Get(rc, fields[1], print)
	case "SET":
		if len(fields) != 3 {
			return fmt.Errorf("usage: SET key value")
		}
		return commands.Set(rc, fields[1], []byte(fields[2]), print)
	case "DEL":
		if len(fields) < 2 {
			return fmt.Errorf("usage: DEL key [key ...]")
		}
		return commands.Del(rc, print, fields[1:]...)
	case "SUBSCRIBE":
		if len(fields) != 2 {
			return fmt.Errorf("usage: SUBSCRIBE channel")
		}
		return commands.Subscribe(rc, fields[1], print)
	case "PUBLISH":
		if len(fields) != 3 {
			return fmt.Errorf("usage: PUBLISH channel message")
		}
		return commands.Publish(rc, fields[1], []byte(fields[2]), print)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
