package services

import (
	"context"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Messenger is the subset of the FCM admin client the dispatch layer uses.
// *messaging.Client satisfies it; tests substitute a fake.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
	SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
	UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
}

// NewMessenger initializes the Firebase app and returns its messaging
// client. Credentials come from FIREBASE_CREDENTIALS when set, otherwise
// from the SDK's default lookup (GOOGLE_APPLICATION_CREDENTIALS).
func NewMessenger() Messenger {
	var opts []option.ClientOption
	if credFile := os.Getenv("FIREBASE_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}
	app, err := firebase.NewApp(context.Background(), nil, opts...)
	if err != nil {
		log.Fatalf("Firebase initialization failed: %v", err)
	}
	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Fatalf("Failed to create messaging client: %v", err)
	}
	log.Println("Connected to FCM")
	return client
}
