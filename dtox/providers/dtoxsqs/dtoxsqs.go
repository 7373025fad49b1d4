package dtoxsqs

import (
	"context"
	"net/http"

	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/Conversia-AI/craftable-dto/logx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/goccy/go-json"
)

var (
	ErrorRegistry = errx.NewRegistry("DTOX_SQS")

	ErrEmptyBody     = ErrorRegistry.Register("EMPTY_BODY", errx.TypeBadRequest, http.StatusBadRequest, "Message has no body")
	ErrInvalidBody   = ErrorRegistry.Register("INVALID_BODY", errx.TypeBadRequest, http.StatusBadRequest, "Message body is not a JSON object")
	ErrReceiveFailed = ErrorRegistry.Register("RECEIVE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to receive messages")
)

// ReceiveAPI is the part of *sqs.Client used by Receive
type ReceiveAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
}

// Options controls how messages become mappings
type Options struct {
	// AttributesKey, when set, receives the message's string attributes as a mapping
	AttributesKey string
	// MessageIDKey, when set, receives the message id
	MessageIDKey string
}

// Normalizer decodes the JSON body of types.Message items
func Normalizer(opts Options) dtox.NormalizerFunc {
	return func(item any) (any, error) {
		switch msg := item.(type) {
		case types.Message:
			return decode(msg, opts)
		case *types.Message:
			if msg == nil {
				return nil, ErrorRegistry.New(ErrEmptyBody)
			}
			return decode(*msg, opts)
		}
		return nil, dtox.ErrorRegistry.New(dtox.ErrUnsupportedInput).WithDetail("source", "dtoxsqs")
	}
}

func decode(msg types.Message, opts Options) (dtox.Mapping, error) {
	id := aws.ToString(msg.MessageId)
	body := aws.ToString(msg.Body)
	if body == "" {
		return nil, ErrorRegistry.New(ErrEmptyBody).WithDetail("message_id", id)
	}

	var data dtox.Mapping
	if err := json.Unmarshal([]byte(body), &data); err != nil || data == nil {
		return nil, ErrorRegistry.NewWithCause(ErrInvalidBody, err).WithDetail("message_id", id)
	}

	if opts.AttributesKey != "" && len(msg.MessageAttributes) > 0 {
		attrs := make(dtox.Mapping, len(msg.MessageAttributes))
		for name, attr := range msg.MessageAttributes {
			if attr.StringValue != nil {
				attrs[name] = *attr.StringValue
			}
		}
		data[opts.AttributesKey] = attrs
	}
	if opts.MessageIDKey != "" {
		data[opts.MessageIDKey] = id
	}
	return data, nil
}

// FromMessages maps message bodies through m, in order
func FromMessages(m *dtox.Mapper, msgs []types.Message, opts Options) ([]dtox.DTO, error) {
	return m.WithNormalizer(Normalizer(opts)).FromIterable(dtox.Items(msgs))
}

// Receive polls queueURL once and maps the received messages. The raw messages
// are returned alongside so callers can delete them after processing.
func Receive(ctx context.Context, client ReceiveAPI, queueURL string, maxMessages, waitSeconds int32, m *dtox.Mapper, opts Options) ([]dtox.DTO, []types.Message, error) {
	out, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(queueURL),
		MaxNumberOfMessages:   maxMessages,
		WaitTimeSeconds:       waitSeconds,
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return nil, nil, ErrorRegistry.NewWithCause(ErrReceiveFailed, err).WithDetail("queue_url", queueURL)
	}
	if len(out.Messages) == 0 {
		return []dtox.DTO{}, nil, nil
	}

	dtos, err := FromMessages(m, out.Messages, opts)
	if err != nil {
		logx.Error("dtoxsqs: failed to map messages from %s: %v", queueURL, err)
		return nil, out.Messages, err
	}
	return dtos, out.Messages, nil
}
