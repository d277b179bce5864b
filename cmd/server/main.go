package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/qyliu/chatrelay/internal/chat"
	"github.com/qyliu/chatrelay/internal/server"
)

func defaultAddr() string {
	if addr := os.Getenv("CHATRELAY_ADDR"); addr != "" {
		return addr
	}
	return ":8888"
}

func main() {
	addr := flag.String("addr", defaultAddr(), "Address to listen on for both TCP and WebSocket (e.g., :8888)")
	flag.Parse()

	dispatcher := chat.NewDispatcher(chat.NewHub())
	srv := server.New(*addr, dispatcher)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting chat relay on %s...", *addr)
		log.Printf("  Accepting both framed TCP and WebSocket connections")
		errChan <- srv.Start()
	}()

	// Admin console on stdin: list, count, status, kick, broadcast, help.
	console := server.NewConsole(dispatcher, os.Stdout)
	go console.Run(os.Stdin)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down...", sig)
		srv.Stop()
	}

	log.Println("Chat relay stopped")
}
