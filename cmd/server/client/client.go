// Package client provides command-line access to a running game server
package client

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/superpet/superpet-api/internal/handlers/superpet/v1alpha1"
)

var (
	// Connection flags
	serverAddr string
	feedAddr   string
	playerID   string
	timeout    time.Duration
)

// ClientCmd is the root command for all client commands
var ClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for the superpet server",
	Long:  `Client commands play the game against a running server by making real gRPC requests.`,
}

func init() {
	ClientCmd.PersistentFlags().StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	ClientCmd.PersistentFlags().StringVar(&feedAddr, "feed", "localhost:8080", "websocket battle feed address")
	ClientCmd.PersistentFlags().StringVar(&playerID, "player", "local", "player ID sent with every request")
	ClientCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	ClientCmd.AddCommand(callCmd)
	ClientCmd.AddCommand(watchCmd)
	for _, cmd := range gameCommands() {
		ClientCmd.AddCommand(cmd)
	}
}

// createConnection creates a gRPC connection to the server
func createConnection() (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	return conn, nil
}

// invoke calls method and prints the response as indented JSON
func invoke(method string, fields map[string]interface{}) error {
	conn, err := createConnection()
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("Failed to close connection: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := v1alpha1.NewGameClient(conn, playerID).Call(ctx, method, fields)
	if err != nil {
		return fmt.Errorf("%s failed: %w", method, err)
	}

	marshaler := protojson.MarshalOptions{Indent: "  "}
	jsonBytes, err := marshaler.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response to JSON: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}
