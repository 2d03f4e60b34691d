package services

import (
	"context"
	"fmt"
	"testing"

	"firebase.google.com/go/v4/messaging"
)

type topicCall struct {
	topic  string
	tokens []string
}

type fakeMessenger struct {
	sent         []*messaging.Message
	multicasts   []*messaging.MulticastMessage
	subscribes   []topicCall
	unsubscribes []topicCall
	failTopics   map[string]bool
	sendErr      error
	multicastErr error
	batch        *messaging.BatchResponse
}

func (f *fakeMessenger) Send(ctx context.Context, message *messaging.Message) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, message)
	return "msg-id", nil
}

func (f *fakeMessenger) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	if f.multicastErr != nil {
		return nil, f.multicastErr
	}
	f.multicasts = append(f.multicasts, message)
	if f.batch != nil {
		return f.batch, nil
	}
	return &messaging.BatchResponse{SuccessCount: len(message.Tokens)}, nil
}

func (f *fakeMessenger) SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	if f.failTopics[topic] {
		return nil, fmt.Errorf("topic %s unavailable", topic)
	}
	f.subscribes = append(f.subscribes, topicCall{topic: topic, tokens: tokens})
	return &messaging.TopicManagementResponse{SuccessCount: len(tokens)}, nil
}

func (f *fakeMessenger) UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	if f.failTopics[topic] {
		return nil, fmt.Errorf("topic %s unavailable", topic)
	}
	f.unsubscribes = append(f.unsubscribes, topicCall{topic: topic, tokens: tokens})
	return &messaging.TopicManagementResponse{SuccessCount: len(tokens)}, nil
}

func TestSubscribeToDaysOneCallPerDay(t *testing.T) {
	fake := &fakeMessenger{}
	s := NewDispatchService(fake)

	days := []string{"Monday", "Wednesday", "Friday"}
	if err := s.SubscribeToDays(context.Background(), "token-1", days); err != nil {
		t.Fatalf("SubscribeToDays returned error: %v", err)
	}

	if len(fake.subscribes) != len(days) {
		t.Fatalf("expected %d channel calls, got %d", len(days), len(fake.subscribes))
	}
	for i, call := range fake.subscribes {
		if call.topic != days[i] {
			t.Errorf("call %d: expected topic %s, got %s", i, days[i], call.topic)
		}
		if len(call.tokens) != 1 || call.tokens[0] != "token-1" {
			t.Errorf("call %d: expected single token token-1, got %v", i, call.tokens)
		}
	}
}

func TestSubscribeToDaysFailureIsIndependent(t *testing.T) {
	fake := &fakeMessenger{failTopics: map[string]bool{"Tuesday": true}}
	s := NewDispatchService(fake)

	err := s.SubscribeToDays(context.Background(), "token-1", []string{"Monday", "Tuesday", "Wednesday"})
	if err == nil {
		t.Fatal("expected error when one day fails")
	}

	// The failing day must not stop or roll back the others
	if len(fake.subscribes) != 2 {
		t.Fatalf("expected 2 successful calls, got %d", len(fake.subscribes))
	}
	if fake.subscribes[0].topic != "Monday" || fake.subscribes[1].topic != "Wednesday" {
		t.Errorf("unexpected topics: %v", fake.subscribes)
	}
}

func TestUnsubscribeFromDaysOneCallPerDay(t *testing.T) {
	fake := &fakeMessenger{}
	s := NewDispatchService(fake)

	if err := s.UnsubscribeFromDays(context.Background(), "token-1", []string{"Sunday", "Saturday"}); err != nil {
		t.Fatalf("UnsubscribeFromDays returned error: %v", err)
	}
	if len(fake.unsubscribes) != 2 {
		t.Fatalf("expected 2 channel calls, got %d", len(fake.unsubscribes))
	}
}

func TestSubscribeToDaysRejectsUnknownDay(t *testing.T) {
	fake := &fakeMessenger{}
	s := NewDispatchService(fake)

	err := s.SubscribeToDays(context.Background(), "token-1", []string{"Funday", "Monday"})
	if err == nil {
		t.Fatal("expected error for unknown weekday")
	}
	if len(fake.subscribes) != 1 || fake.subscribes[0].topic != "Monday" {
		t.Errorf("valid day should still be subscribed: %v", fake.subscribes)
	}
}

func TestSubscribeToDaysRequiresToken(t *testing.T) {
	fake := &fakeMessenger{}
	s := NewDispatchService(fake)

	if err := s.SubscribeToDays(context.Background(), "", []string{"Monday"}); err == nil {
		t.Fatal("expected error for empty token")
	}
	if len(fake.subscribes) != 0 {
		t.Errorf("no channel call expected, got %v", fake.subscribes)
	}
}

func TestNotifyIndividualPayload(t *testing.T) {
	fake := &fakeMessenger{}
	s := NewDispatchService(fake)

	if err := s.NotifyIndividual(context.Background(), "token-1", "hello"); err != nil {
		t.Fatalf("NotifyIndividual returned error: %v", err)
	}
	if len(fake.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(fake.sent))
	}
	msg := fake.sent[0]
	if msg.Token != "token-1" {
		t.Errorf("expected token token-1, got %s", msg.Token)
	}
	if msg.Notification.Title != "Accountive" || msg.Notification.Body != "hello" {
		t.Errorf("unexpected notification: %+v", msg.Notification)
	}
	if msg.Data["type"] != "individual" {
		t.Errorf("expected data type individual, got %v", msg.Data)
	}
}

func TestNotifyFriendsPayload(t *testing.T) {
	fake := &fakeMessenger{}
	s := NewDispatchService(fake)

	tokens := []string{"tA", "tB"}
	if err := s.NotifyFriends(context.Background(), tokens, "done!"); err != nil {
		t.Fatalf("NotifyFriends returned error: %v", err)
	}
	if len(fake.multicasts) != 1 {
		t.Fatalf("expected 1 multicast, got %d", len(fake.multicasts))
	}
	msg := fake.multicasts[0]
	if len(msg.Tokens) != 2 || msg.Tokens[0] != "tA" || msg.Tokens[1] != "tB" {
		t.Errorf("unexpected tokens: %v", msg.Tokens)
	}
	if msg.Data["type"] != "friends" {
		t.Errorf("expected data type friends, got %v", msg.Data)
	}
}

func TestNotifyFriendsPartialFailureNotSurfaced(t *testing.T) {
	fake := &fakeMessenger{batch: &messaging.BatchResponse{SuccessCount: 1, FailureCount: 1}}
	s := NewDispatchService(fake)

	if err := s.NotifyFriends(context.Background(), []string{"tA", "stale"}, "done!"); err != nil {
		t.Fatalf("partial token failure should not fail the call: %v", err)
	}
}

func TestNotifyFriendsRequiresTokens(t *testing.T) {
	fake := &fakeMessenger{}
	s := NewDispatchService(fake)

	if err := s.NotifyFriends(context.Background(), nil, "done!"); err == nil {
		t.Fatal("expected error for empty token set")
	}
	if len(fake.multicasts) != 0 {
		t.Errorf("no multicast expected, got %d", len(fake.multicasts))
	}
}

func TestNotifyTopicRejectsUnknownTopic(t *testing.T) {
	fake := &fakeMessenger{}
	s := NewDispatchService(fake)

	if err := s.NotifyTopic(context.Background(), "Funday", "hi"); err == nil {
		t.Fatal("expected error for unknown topic")
	}
	if len(fake.sent) != 0 {
		t.Errorf("no send expected, got %d", len(fake.sent))
	}
}
