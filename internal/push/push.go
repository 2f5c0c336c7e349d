// Package push delivers notifications through Firebase Cloud Messaging.
package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"
)

type Message struct {
	Title string
	Body  string
	Link  string
	Data  map[string]string
}

type Sender interface {
	Send(ctx context.Context, token string, msg Message) error
}

type FCM struct {
	client *messaging.Client
}

// NewFCM builds a sender from a service account credentials file.
func NewFCM(ctx context.Context, credentialsFile string) (*FCM, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &FCM{client: client}, nil
}

func (f *FCM) Send(ctx context.Context, token string, msg Message) error {
	_, err := f.client.Send(ctx, buildMessage(token, msg))
	return err
}

func buildMessage(token string, msg Message) *messaging.Message {
	data := map[string]string{"link": msg.Link}
	for k, v := range msg.Data {
		data[k] = v
	}
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: msg.Title,
						Body:  msg.Body,
					},
					Sound: "default",
				},
			},
		},
	}
}

// Noop drops every message. Used when no credentials are configured.
type Noop struct{}

func (Noop) Send(context.Context, string, Message) error { return nil }
