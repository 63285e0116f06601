package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharma-academy/backend/pkg/queue"
)

type fakeMailer struct {
	sent []queue.EmailPayload
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, payload queue.EmailPayload) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, payload)
	return nil
}

func makeJob(t *testing.T, jobType queue.JobType, payload interface{}) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: "job-1", Type: jobType, Payload: raw}
}

func TestProcessEmailJob(t *testing.T) {
	mailer := &fakeMailer{}
	p := NewNotificationProcessor(nil, mailer, nil)

	job := makeJob(t, queue.JobTypeEmail, queue.EmailPayload{
		To: "ana@example.com", Subject: "hi", BodyText: "hello",
	})
	require.NoError(t, p.Process(context.Background(), job))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@example.com", mailer.sent[0].To)
}

func TestProcessWebhookJob(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = make([]byte, r.ContentLength)
		_, _ = r.Body.Read(got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewNotificationProcessor(nil, &fakeMailer{}, nil)
	job := makeJob(t, queue.JobTypeWebhook, queue.WebhookPayload{
		URL: srv.URL, Body: json.RawMessage(`{"order_id":"o-1"}`),
	})
	require.NoError(t, p.Process(context.Background(), job))
	assert.JSONEq(t, `{"order_id":"o-1"}`, string(got))
}

func TestProcessWebhookJobFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewNotificationProcessor(nil, &fakeMailer{}, nil)
	job := makeJob(t, queue.JobTypeWebhook, queue.WebhookPayload{URL: srv.URL, Body: json.RawMessage(`{}`)})
	assert.Error(t, p.Process(context.Background(), job))
}

func TestProcessUnknownJobType(t *testing.T) {
	p := NewNotificationProcessor(nil, &fakeMailer{}, nil)
	assert.Error(t, p.Process(context.Background(), &queue.Job{ID: "x", Type: "mystery"}))
}
