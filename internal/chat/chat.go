// Package chat implements the Minecraft chat-component JSON document and the
// server-list status response, both transmitted as length-prefixed protocol
// Strings carrying JSON (spec §3/§6), not NBT.
package chat

import (
	"encoding/json"

	"github.com/opencraft-go/corecraft/internal/protoerr"
)

// statusResponseMaxChars is the soft cap on the JSON-encoded status document;
// exceeding it is logged but not fatal (spec §4.2 tie-break).
const statusResponseMaxChars = 32767

// Message is a single chat component. Optional fields are omitted from the
// wire JSON when unset, and Extra is omitted when empty.
type Message struct {
	Text          string    `json:"text"`
	Bold          *bool     `json:"bold,omitempty"`
	Italic        *bool     `json:"italic,omitempty"`
	Underlined    *bool     `json:"underlined,omitempty"`
	Strikethrough *bool     `json:"strikethrough,omitempty"`
	Obfuscated    *bool     `json:"obfuscated,omitempty"`
	Color         string    `json:"color,omitempty"`
	Extra         []Message `json:"extra,omitempty"`
}

// Text constructs a plain chat message with no style flags.
func Text(s string) Message { return Message{Text: s} }

// Marshal renders m as the JSON document carried over the wire as a
// length-prefixed protocol String.
func Marshal(m Message) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", protoerr.Wrap(protoerr.KindProtocol, "marshal chat message", err)
	}
	return string(b), nil
}

// Unmarshal parses a chat JSON document received over the wire.
func Unmarshal(s string) (Message, error) {
	var m Message
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return Message{}, protoerr.Wrap(protoerr.KindMalformed, "unmarshal chat message", err)
	}
	return m, nil
}

// StatusVersion is the "version" object of a status response.
type StatusVersion struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

// StatusPlayerSample is one entry of the "sample" player list.
type StatusPlayerSample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// StatusPlayers is the "players" object of a status response.
type StatusPlayers struct {
	Max    int32                `json:"max"`
	Online int32                `json:"online"`
	Sample []StatusPlayerSample `json:"sample,omitempty"`
}

// StatusResponse is the full server-list ping JSON document.
type StatusResponse struct {
	Version     StatusVersion `json:"version"`
	Players     StatusPlayers `json:"players"`
	Description Message       `json:"description"`
	Favicon     string        `json:"favicon,omitempty"`
}

// Marshal renders a StatusResponse. A document exceeding the 32,767
// character soft cap is still marshaled and transmitted; callers treat this
// as a soft error per spec §4.2 and should log it.
func (r StatusResponse) Marshal() (string, bool, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", false, protoerr.Wrap(protoerr.KindProtocol, "marshal status response", err)
	}
	s := string(b)
	return s, len([]rune(s)) <= statusResponseMaxChars, nil
}
