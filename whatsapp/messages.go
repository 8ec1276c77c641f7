package whatsapp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Abraxas-365/wacloud/asyncx"
	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/logx"
	"github.com/Abraxas-365/wacloud/transport"
	"github.com/Abraxas-365/wacloud/validatex"
)

// MediaType is the message type of a media message
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaAudio    MediaType = "audio"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
	MediaSticker  MediaType = "sticker"
)

var messageSchema = validatex.Schema{Name: "whatsapp.message"}

// Message is the body of POST /{phone-number-id}/messages
type Message struct {
	MessagingProduct string        `json:"messaging_product"`
	RecipientType    string        `json:"recipient_type,omitempty"`
	To               string        `json:"to" validate:"required,wa_phone"`
	Type             string        `json:"type" validate:"required,oneof=text image audio video document sticker location template reaction interactive contacts"`
	Context          *ReplyContext `json:"context,omitempty"`
	Text             *TextBody     `json:"text,omitempty" validate:"required_if=Type text"`
	Image            *MediaObject  `json:"image,omitempty" validate:"required_if=Type image"`
	Audio            *MediaObject  `json:"audio,omitempty" validate:"required_if=Type audio"`
	Video            *MediaObject  `json:"video,omitempty" validate:"required_if=Type video"`
	Document         *MediaObject  `json:"document,omitempty" validate:"required_if=Type document"`
	Sticker          *MediaObject  `json:"sticker,omitempty" validate:"required_if=Type sticker"`
	Location         *LocationBody `json:"location,omitempty" validate:"required_if=Type location"`
	Template         *TemplateBody `json:"template,omitempty" validate:"required_if=Type template"`
	Reaction         *ReactionBody `json:"reaction,omitempty" validate:"required_if=Type reaction"`
	Interactive      any           `json:"interactive,omitempty"`
	Contacts         any           `json:"contacts,omitempty"`
}

// ReplyContext quotes an earlier message
type ReplyContext struct {
	MessageID string `json:"message_id" validate:"required"`
}

type TextBody struct {
	Body       string `json:"body" validate:"required,max=4096"`
	PreviewURL bool   `json:"preview_url,omitempty"`
}

// MediaObject references uploaded media by ID or public media by link
type MediaObject struct {
	ID       string `json:"id,omitempty" validate:"required_without=Link"`
	Link     string `json:"link,omitempty" validate:"omitempty,url"`
	Caption  string `json:"caption,omitempty" validate:"max=1024"`
	Filename string `json:"filename,omitempty"`
}

type LocationBody struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

type ReactionBody struct {
	MessageID string `json:"message_id" validate:"required"`
	Emoji     string `json:"emoji"` // empty removes the reaction
}

// SendResponse is returned by the messages endpoint
type SendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID            string `json:"id"`
		MessageStatus string `json:"message_status,omitempty"`
	} `json:"messages"`
}

// MessageID returns the ID of the first accepted message
func (r *SendResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

// SendMessage validates and sends a fully built message. msg is not modified.
func (c *Client) SendMessage(ctx context.Context, msg *Message) (*SendResponse, error) {
	if msg == nil {
		return nil, Registry.New(ErrMissingContent, errx.WithField("message"))
	}

	m := *msg
	to, err := recipient(m.To)
	if err != nil {
		return nil, err
	}
	m.To = to
	m.MessagingProduct = "whatsapp"
	if m.RecipientType == "" {
		m.RecipientType = "individual"
	}

	if err := c.validator.Validate(messageSchema, &m); err != nil {
		return nil, err
	}

	logx.Debug("whatsapp: sending %s message to %s", m.Type, m.To)

	var resp SendResponse
	err = c.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.cfg.PhoneNumberID + "/messages",
		Body:   &m,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.MessageID() == "" {
		return nil, Registry.New(ErrEmptyResponse, errx.WithDetail("operation", "send_message"))
	}
	return &resp, nil
}

// SendText sends a plain text message
func (c *Client) SendText(ctx context.Context, to, body string, previewURL bool) (*SendResponse, error) {
	return c.SendMessage(ctx, &Message{
		To:   to,
		Type: "text",
		Text: &TextBody{Body: body, PreviewURL: previewURL},
	})
}

// SendReply sends a text message quoting messageID
func (c *Client) SendReply(ctx context.Context, to, messageID, body string) (*SendResponse, error) {
	return c.SendMessage(ctx, &Message{
		To:      to,
		Type:    "text",
		Context: &ReplyContext{MessageID: messageID},
		Text:    &TextBody{Body: body},
	})
}

// SendMedia sends an image, audio, video, document or sticker
func (c *Client) SendMedia(ctx context.Context, to string, kind MediaType, media MediaObject) (*SendResponse, error) {
	msg := &Message{To: to, Type: string(kind)}
	switch kind {
	case MediaImage:
		msg.Image = &media
	case MediaAudio:
		msg.Audio = &media
	case MediaVideo:
		msg.Video = &media
	case MediaDocument:
		msg.Document = &media
	case MediaSticker:
		msg.Sticker = &media
	default:
		return nil, errx.Validation("type", fmt.Sprintf("unsupported media type %q", kind))
	}
	return c.SendMessage(ctx, msg)
}

// SendLocation sends a location pin
func (c *Client) SendLocation(ctx context.Context, to string, loc LocationBody) (*SendResponse, error) {
	return c.SendMessage(ctx, &Message{To: to, Type: "location", Location: &loc})
}

// SendReaction reacts to messageID; an empty emoji removes the reaction
func (c *Client) SendReaction(ctx context.Context, to, messageID, emoji string) (*SendResponse, error) {
	return c.SendMessage(ctx, &Message{
		To:       to,
		Type:     "reaction",
		Reaction: &ReactionBody{MessageID: messageID, Emoji: emoji},
	})
}

// SendTemplate sends an approved template. Parameters are resolved against the template
// definition fetched from the API: named templates use the {{name}} keys, positional ones
// consume the values in numeric key order.
func (c *Client) SendTemplate(ctx context.Context, to, name, language string, params map[string]any) (*SendResponse, error) {
	body := &TemplateBody{Name: name, Language: Language{Code: language}}

	if len(params) > 0 {
		tmpl, err := c.GetTemplate(ctx, name, language)
		if err != nil {
			return nil, err
		}
		body.Components = BuildTemplateComponents(tmpl, params)
	}

	return c.SendMessage(ctx, &Message{To: to, Type: "template", Template: body})
}

type statusUpdate struct {
	MessagingProduct string           `json:"messaging_product"`
	Status           string           `json:"status"`
	MessageID        string           `json:"message_id"`
	TypingIndicator  *typingIndicator `json:"typing_indicator,omitempty"`
}

type typingIndicator struct {
	Type string `json:"type"`
}

// MarkAsRead marks an inbound message as read
func (c *Client) MarkAsRead(ctx context.Context, messageID string) error {
	return c.updateStatus(ctx, messageID, nil)
}

// SendTypingIndicator marks messageID as read and shows a typing indicator to its sender
// until the next reply or for about 25 seconds
func (c *Client) SendTypingIndicator(ctx context.Context, messageID string) error {
	return c.updateStatus(ctx, messageID, &typingIndicator{Type: "text"})
}

func (c *Client) updateStatus(ctx context.Context, messageID string, typing *typingIndicator) error {
	if messageID == "" {
		return errx.Validation("message_id", "message ID is required")
	}

	var resp successResponse
	err := c.do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   c.cfg.PhoneNumberID + "/messages",
		Body: statusUpdate{
			MessagingProduct: "whatsapp",
			Status:           "read",
			MessageID:        messageID,
			TypingIndicator:  typing,
		},
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return Registry.New(ErrEmptyResponse, errx.WithDetail("operation", "mark_as_read"))
	}
	return nil
}

// BulkItem is the outcome of one message of a bulk send
type BulkItem struct {
	Index    int
	To       string
	Response *SendResponse
	Err      error
}

// BulkResult summarizes a bulk send; Items keep the input order
type BulkResult struct {
	Sent   int
	Failed int
	Items  []BulkItem
}

// SendBulk sends messages with at most concurrency requests in flight. Individual
// failures are reported per item and never abort the rest.
func (c *Client) SendBulk(ctx context.Context, messages []*Message, concurrency int) *BulkResult {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := asyncx.Settle(ctx, messages, concurrency, func(ctx context.Context, m *Message) (*SendResponse, error) {
		return c.SendMessage(ctx, m)
	})

	out := &BulkResult{Items: make([]BulkItem, len(results))}
	for i, r := range results {
		item := BulkItem{Index: r.Index, Response: r.Value, Err: r.Err}
		if messages[i] != nil {
			item.To = messages[i].To
		}
		if r.Err != nil {
			out.Failed++
			logx.Warn("whatsapp: bulk item %d to %s failed: %s", i, item.To, errx.Print(r.Err))
		} else {
			out.Sent++
		}
		out.Items[i] = item
	}
	return out
}

// SendAll sends messages with at most concurrency requests in flight and stops at the first
// failure: requests not yet started are skipped and that error is returned. Responses keep
// the input order.
func (c *Client) SendAll(ctx context.Context, messages []*Message, concurrency int) ([]*SendResponse, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	return asyncx.AsyncAll(ctx, messages, concurrency, func(ctx context.Context, m *Message) (*SendResponse, error) {
		return c.SendMessage(ctx, m)
	})
}
