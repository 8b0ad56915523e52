package model

import "time"

type NotificationChannel string

const (
	NotificationChannelSMS      NotificationChannel = "sms"
	NotificationChannelWhatsApp NotificationChannel = "whatsapp"
	NotificationChannelEmail    NotificationChannel = "email"
)

func (c NotificationChannel) Valid() bool {
	return c == NotificationChannelSMS || c == NotificationChannelWhatsApp || c == NotificationChannelEmail
}

// NotificationRequest is published once per enabled toggle after a booking.
// Delivery is best effort.
type NotificationRequest struct {
	ID            string              `json:"id"`
	Channel       NotificationChannel `json:"channel"`
	Recipient     string              `json:"recipient"`
	Subject       string              `json:"subject,omitempty"`
	Message       string              `json:"message"`
	AppointmentID string              `json:"appointmentId"`
	CreatedAt     time.Time           `json:"createdAt"`
}
