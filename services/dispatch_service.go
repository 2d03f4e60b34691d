package services

import (
	"context"
	"log"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/messaging"

	"accountive-server/utils/errors"
)

const notificationTitle = "Accountive"

// DispatchService forwards notification intents to the push channel. It
// never touches the document store; authorization is enforced at the
// route boundary before any call lands here.
type DispatchService struct {
	messenger Messenger
}

func NewDispatchService(messenger Messenger) *DispatchService {
	return &DispatchService{messenger: messenger}
}

// NotifyIndividual sends one notification to a single device token.
func (s *DispatchService) NotifyIndividual(ctx context.Context, token string, body string) error {
	if token == "" {
		return errors.ErrInvalidInput
	}
	_, err := s.messenger.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: notificationTitle,
			Body:  body,
		},
		Data: map[string]string{"type": "individual"},
	})
	if err != nil {
		log.Printf("Failed to notify individual: %v", err)
		return errors.Wrap(err, "DISPATCH_ERROR", "Failed to send notification", http.StatusInternalServerError)
	}
	return nil
}

// NotifyFriends fans one notification out to a set of device tokens in a
// single multicast. Per-token failures inside a successful batch are
// logged only; the call succeeds if the batch request itself succeeds.
func (s *DispatchService) NotifyFriends(ctx context.Context, tokens []string, body string) error {
	if len(tokens) == 0 {
		return errors.ErrInvalidInput
	}
	res, err := s.messenger.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: notificationTitle,
			Body:  body,
		},
		Data: map[string]string{"type": "friends"},
	})
	if err != nil {
		log.Printf("Failed to notify friends: %v", err)
		return errors.Wrap(err, "DISPATCH_ERROR", "Failed to send notification", http.StatusInternalServerError)
	}
	if res != nil && res.FailureCount > 0 {
		log.Printf("Multicast delivered with %d/%d failed tokens", res.FailureCount, len(tokens))
	}
	return nil
}

// NotifyTopic sends one notification to every device subscribed to a
// weekday topic.
func (s *DispatchService) NotifyTopic(ctx context.Context, topic string, body string) error {
	if !IsWeekday(topic) {
		return errors.ErrInvalidInput
	}
	_, err := s.messenger.Send(ctx, &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: notificationTitle,
			Body:  body,
		},
	})
	if err != nil {
		log.Printf("Failed to notify topic %s: %v", topic, err)
		return errors.Wrap(err, "DISPATCH_ERROR", "Failed to send notification", http.StatusInternalServerError)
	}
	return nil
}

// SubscribeToDays adds the device token to each weekday topic in days.
// Each weekday is one independent channel call; a failure on one day does
// not stop or roll back the others.
func (s *DispatchService) SubscribeToDays(ctx context.Context, token string, days []string) error {
	return s.updateTopics(ctx, token, days, true)
}

// UnsubscribeFromDays removes the device token from each weekday topic in days.
func (s *DispatchService) UnsubscribeFromDays(ctx context.Context, token string, days []string) error {
	return s.updateTopics(ctx, token, days, false)
}

func (s *DispatchService) updateTopics(ctx context.Context, token string, days []string, subscribe bool) error {
	if token == "" {
		return errors.ErrInvalidInput
	}
	var failed []string
	for _, day := range days {
		if !IsWeekday(day) {
			failed = append(failed, day)
			continue
		}
		var err error
		if subscribe {
			_, err = s.messenger.SubscribeToTopic(ctx, []string{token}, day)
		} else {
			_, err = s.messenger.UnsubscribeFromTopic(ctx, []string{token}, day)
		}
		if err != nil {
			log.Printf("Failed to update topic %s: %v", day, err)
			failed = append(failed, day)
		}
	}
	if len(failed) > 0 {
		return errors.NewAPIError("DISPATCH_ERROR", "Failed to update topics: "+strings.Join(failed, ", "), http.StatusInternalServerError)
	}
	return nil
}

// DeleteUserActivities is an extension point for server-side bulk
// deletion of a user's activities. The route enforces authentication;
// the deletion itself is not implemented here yet.
func (s *DispatchService) DeleteUserActivities(ctx context.Context) error {
	return nil
}
