// Command chat-demo runs the chat client against the in-memory mock
// transport so the event flow can be observed without a gateway.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/glowmart/chat-sdk-go/sdk/chat"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	client, err := chat.NewClient(chat.Config{
		Endpoint: "wss://shop.example.com/ws/chat",
		Session:  chat.NewStaticSession("demo-token", 7),
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("create client: %v", err)
	}

	// In production the default WebSocket transport talks to the gateway;
	// the mock answers the auth handshake on its own.
	mock := chat.NewMockTransport()
	client.SetTransport(mock)

	client.OnMessage(func(m chat.Message) {
		fmt.Printf("message from %s: %s\n", m.SenderName, m.Content)
	})
	client.OnTyping(func(ts chat.TypingStatus) {
		fmt.Printf("user %d typing in %s: %v\n", ts.UserID, ts.ChatID, ts.IsTyping)
	})
	client.OnNotification(func(n chat.Notification) {
		fmt.Printf("notification: %s — %s\n", n.Title, n.Message)
	})
	client.On(chat.EventConnectionLost, func(e chat.Event) {
		fmt.Println("connection lost, reconnect manually")
	})
	client.OnError(func(err error) {
		fmt.Printf("error: %v\n", err)
	})

	client.Connect()

	// Queued before authentication completes, flushed right after.
	clientID := client.SendMessage(42, "Hi! Is the vitamin C serum in stock?", "chat-42")
	fmt.Printf("optimistic message id: %s\n", clientID)

	time.Sleep(100 * time.Millisecond)
	mock.SimulateFrame(map[string]any{
		"type": "message", "id": 1001, "clientId": clientID,
		"content": "Hi! Is the vitamin C serum in stock?", "senderId": 7,
		"senderName": "You", "chatId": "chat-42",
		"createdAt": time.Now().Format(time.RFC3339), "subtype": "DIRECT",
	})
	mock.SimulateFrame(map[string]any{
		"type": "message", "id": 1002, "content": "Yes, 12 left!",
		"senderId": 42, "senderName": "Maria", "chatId": "chat-42",
		"createdAt": time.Now().Format(time.RFC3339), "subtype": "DIRECT",
	})
	mock.SimulateFrame(map[string]any{
		"type": "notification", "title": "Order shipped",
		"message": "Your order #118 is on its way",
	})

	fmt.Println("client running, Ctrl+C to exit")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	client.Disconnect()
	fmt.Println("bye")
}
