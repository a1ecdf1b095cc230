// Package voice implements the voice-attachment framing used inside message
// content:
//
//	[VOICE_MESSAGE]<base64 audio>\n\n<caption>
//
// Stored messages written by older clients carry a data URL
// ("data:audio/webm;base64,...") as the payload; Decode accepts both.
package voice

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Marker prefixes every message that carries a voice attachment.
const Marker = "[VOICE_MESSAGE]"

const separator = "\n\n"

var (
	ErrNotVoice   = errors.New("content carries no voice attachment")
	ErrEmptyAudio = errors.New("voice payload is empty")
)

// Attachment is a decoded voice message.
type Attachment struct {
	Audio    []byte
	MIMEType string // set only when the payload was a data URL
	Caption  string
}

// Encode frames audio and caption into message content.
func Encode(audio []byte, caption string) string {
	var b strings.Builder
	b.Grow(len(Marker) + base64.StdEncoding.EncodedLen(len(audio)) + len(separator) + len(caption))
	b.WriteString(Marker)
	b.WriteString(base64.StdEncoding.EncodeToString(audio))
	b.WriteString(separator)
	b.WriteString(caption)
	return b.String()
}

// IsVoice reports whether content starts with the voice marker.
func IsVoice(content string) bool {
	return strings.HasPrefix(content, Marker)
}

// Decode splits content produced by Encode back into audio and caption.
// Returns ErrNotVoice when content has no marker.
func Decode(content string) (Attachment, error) {
	if !IsVoice(content) {
		return Attachment{}, ErrNotVoice
	}
	rest := strings.TrimPrefix(content, Marker)

	// base64 never contains a newline, so the first blank line ends the payload.
	payload, caption, _ := strings.Cut(rest, separator)

	audio, mime, err := DecodePayload(payload)
	if err != nil {
		return Attachment{}, err
	}

	return Attachment{Audio: audio, MIMEType: mime, Caption: caption}, nil
}

// DecodePayload decodes a bare base64 payload or a
// "data:<mime>;base64,<payload>" URL. mime is empty for a bare payload.
// A payload that decodes to zero bytes fails with ErrEmptyAudio.
func DecodePayload(payload string) (audio []byte, mime string, err error) {
	if strings.HasPrefix(payload, "data:") {
		header, data, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, "", fmt.Errorf("decode voice payload: malformed data url")
		}
		mime = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		payload = data
	}

	audio, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode voice payload: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", ErrEmptyAudio
	}
	return audio, mime, nil
}
