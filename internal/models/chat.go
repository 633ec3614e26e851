package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// MessageType tags the payload carried by a chat message
type MessageType string

const (
	MessageTypeText          MessageType = "text"
	MessageTypeMeetupRequest MessageType = "meetupRequest"
	MessageTypeSystem        MessageType = "system"
)

// SystemSenderID is the sender id stamped on system messages
const SystemSenderID = "system"

// ChatRoomID derives the room id of a dog pair. The order of the arguments
// does not matter.
func ChatRoomID(dogA, dogB string) string {
	ids := []string{dogA, dogB}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// LastMessagePreview is the denormalized preview kept on a chat room
type LastMessagePreview struct {
	Text        string      `json:"text"`
	Timestamp   time.Time   `json:"timestamp"`
	SenderID    string      `json:"senderId"`
	MessageType MessageType `json:"messageType"`
}

// ChatRoom is the conversation container between two matched dogs
type ChatRoom struct {
	ID          string             `json:"id"`
	DogIDs      []string           `json:"dogIds"`
	UserIDs     []string           `json:"userIds"`
	IsPuppyMode bool               `json:"isPuppyMode"`
	CreatedAt   time.Time          `json:"createdAt"`
	LastMessage LastMessagePreview `json:"lastMessage"`
}

// HasUser reports whether the user participates in the room
func (r *ChatRoom) HasUser(userID string) bool {
	for _, id := range r.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// MessagePayload is the tag-specific part of a message
type MessagePayload interface {
	Type() MessageType
	DisplayText() string
	MeetupRef() string
}

// TextPayload is a plain user message
type TextPayload struct {
	Text string
}

func (p TextPayload) Type() MessageType   { return MessageTypeText }
func (p TextPayload) DisplayText() string { return p.Text }
func (p TextPayload) MeetupRef() string   { return "" }

// SystemPayload is a generated notice; MeetupID is set when the notice is
// about a meet-up.
type SystemPayload struct {
	Text     string
	MeetupID string
}

func (p SystemPayload) Type() MessageType   { return MessageTypeSystem }
func (p SystemPayload) DisplayText() string { return p.Text }
func (p SystemPayload) MeetupRef() string   { return p.MeetupID }

// MeetupPayload references a meet-up proposal
type MeetupPayload struct {
	Text     string
	MeetupID string
}

func (p MeetupPayload) Type() MessageType   { return MessageTypeMeetupRequest }
func (p MeetupPayload) DisplayText() string { return p.Text }
func (p MeetupPayload) MeetupRef() string   { return p.MeetupID }

// NewPayload rebuilds a payload from its flattened storage form
func NewPayload(t MessageType, text, meetupID string) (MessagePayload, error) {
	switch t {
	case MessageTypeText:
		return TextPayload{Text: text}, nil
	case MessageTypeSystem:
		return SystemPayload{Text: text, MeetupID: meetupID}, nil
	case MessageTypeMeetupRequest:
		if meetupID == "" {
			return nil, fmt.Errorf("meetupRequest message without meetup id")
		}
		return MeetupPayload{Text: text, MeetupID: meetupID}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", t)
	}
}

// Message is an append-only chat entry: a shared envelope plus a payload
type Message struct {
	ID            string
	ChatRoomID    string
	SenderID      string
	ReceiverID    string
	SenderDogID   string
	ReceiverDogID string
	Timestamp     time.Time
	Payload       MessagePayload
}

// Type returns the payload tag
func (m *Message) Type() MessageType {
	if m.Payload == nil {
		return ""
	}
	return m.Payload.Type()
}

// Text returns the display text of the payload
func (m *Message) Text() string {
	if m.Payload == nil {
		return ""
	}
	return m.Payload.DisplayText()
}

// MeetupID returns the referenced meet-up, if any
func (m *Message) MeetupID() string {
	if m.Payload == nil {
		return ""
	}
	return m.Payload.MeetupRef()
}

// Preview builds the last-message preview for this message
func (m *Message) Preview() LastMessagePreview {
	return LastMessagePreview{
		Text:        m.Text(),
		Timestamp:   m.Timestamp,
		SenderID:    m.SenderID,
		MessageType: m.Type(),
	}
}

type messageJSON struct {
	ID            string      `json:"id"`
	ChatRoomID    string      `json:"chatRoomId"`
	Text          string      `json:"text"`
	SenderID      string      `json:"senderId"`
	ReceiverID    string      `json:"receiverId"`
	SenderDogID   string      `json:"senderDogId"`
	ReceiverDogID string      `json:"receiverDogId"`
	Timestamp     time.Time   `json:"timestamp"`
	MessageType   MessageType `json:"messageType"`
	MeetupID      string      `json:"meetupId,omitempty"`
}

// MarshalJSON flattens the payload into the wire shape used by clients
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		ID:            m.ID,
		ChatRoomID:    m.ChatRoomID,
		Text:          m.Text(),
		SenderID:      m.SenderID,
		ReceiverID:    m.ReceiverID,
		SenderDogID:   m.SenderDogID,
		ReceiverDogID: m.ReceiverDogID,
		Timestamp:     m.Timestamp,
		MessageType:   m.Type(),
		MeetupID:      m.MeetupID(),
	})
}

// UnmarshalJSON restores the tagged payload from the wire shape
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := NewPayload(raw.MessageType, raw.Text, raw.MeetupID)
	if err != nil {
		return err
	}
	*m = Message{
		ID:            raw.ID,
		ChatRoomID:    raw.ChatRoomID,
		SenderID:      raw.SenderID,
		ReceiverID:    raw.ReceiverID,
		SenderDogID:   raw.SenderDogID,
		ReceiverDogID: raw.ReceiverDogID,
		Timestamp:     raw.Timestamp,
		Payload:       payload,
	}
	return nil
}
