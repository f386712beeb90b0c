package messaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/goleak"

	"github.com/noah-isme/study-resource-bot/pkg/jobs"
)

type fakeCreator struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioMessengerSend(t *testing.T) {
	creator := &fakeCreator{}
	messenger := newTwilioMessenger(creator, "whatsapp:+14155238886", nil)

	require.NoError(t, messenger.Send(context.Background(), "whatsapp:+15550001", "📘 Found 1 resource(s):"))

	require.Len(t, creator.params, 1)
	p := creator.params[0]
	assert.Equal(t, "whatsapp:+14155238886", *p.From)
	assert.Equal(t, "whatsapp:+15550001", *p.To)
	assert.Equal(t, "📘 Found 1 resource(s):", *p.Body)
}

func TestTwilioMessengerErrors(t *testing.T) {
	creator := &fakeCreator{err: errors.New("21211 invalid To")}
	messenger := newTwilioMessenger(creator, "whatsapp:+1", nil)

	require.Error(t, messenger.Send(context.Background(), "bad", "hi"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, messenger.Send(ctx, "whatsapp:+2", "hi"))
	assert.Len(t, creator.params, 1)
}

func TestNewTwilioMessengerRequiresCredentials(t *testing.T) {
	_, err := NewTwilioMessenger("", "token", "whatsapp:+1", nil)
	require.Error(t, err)
	_, err = NewTwilioMessenger("AC123", "token", "", nil)
	require.Error(t, err)
}

func TestConsoleMessenger(t *testing.T) {
	var buf bytes.Buffer
	messenger := NewConsoleMessenger(&buf)

	require.NoError(t, messenger.Send(context.Background(), "console", "hello"))
	require.NoError(t, messenger.Send(context.Background(), "console", "again"))

	assert.Equal(t, "hello\n\nagain\n\n", buf.String())
}

type flakyMessenger struct {
	mu       sync.Mutex
	failures int
	sent     []string
}

func (f *flakyMessenger) Send(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("gateway timeout")
	}
	f.sent = append(f.sent, to+":"+body)
	return nil
}

func (f *flakyMessenger) delivered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestQueuedMessengerRetriesDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)

	next := &flakyMessenger{failures: 1}
	messenger := NewQueuedMessenger(next, jobs.QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond})
	messenger.Start(context.Background())

	require.NoError(t, messenger.Send(context.Background(), "u1", "hello"))

	assert.Eventually(t, func() bool { return len(next.delivered()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"u1:hello"}, next.delivered())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	messenger.Stop(ctx)

	require.Error(t, messenger.Send(context.Background(), "u1", "late"))
}

func TestQueuedMessengerKeepsPerUserOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	next := &flakyMessenger{}
	messenger := NewQueuedMessenger(next, jobs.QueueConfig{Workers: 4, RetryDelay: time.Millisecond})
	messenger.Start(context.Background())

	var want []string
	for i := 0; i < 20; i++ {
		for _, user := range []string{"u1", "u2"} {
			body := fmt.Sprintf("reply-%02d", i)
			require.NoError(t, messenger.Send(context.Background(), user, body))
			if user == "u1" {
				want = append(want, "u1:"+body)
			}
		}
	}

	assert.Eventually(t, func() bool { return len(next.delivered()) == 40 }, time.Second, 5*time.Millisecond)

	var got []string
	for _, d := range next.delivered() {
		if strings.HasPrefix(d, "u1:") {
			got = append(got, d)
		}
	}
	assert.Equal(t, want, got)
	assert.Equal(t, messenger.lane("u1"), messenger.lane("u1"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	messenger.Stop(ctx)
	assert.Equal(t, 0, messenger.Pending())
}
