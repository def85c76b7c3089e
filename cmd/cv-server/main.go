package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contextvault/pkg/remote"
)

const DefaultAddr = ":8080"

func main() {
	addr := flag.String("addr", DefaultAddr, "listen address")
	flag.Parse()

	// 内存后端：协议和 CLI 用的是同一个 Client 接口
	backend := remote.NewMemoryStore()
	handler := remote.NewHandler(backend)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		fmt.Printf("🚀 ContextVault server listening on %s...\n", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to serve: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n⚠️  Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Shutdown failed: %v", err)
	}
	fmt.Println("👋 Server stopped.")
}
