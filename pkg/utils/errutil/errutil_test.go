package errutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/exportin-lab/exportin/pkg/utils/errutil"
)

type recordingTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (t *recordingTransport) Configure(options sentry.ClientOptions) {}

func (t *recordingTransport) SendEvent(event *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *recordingTransport) Flush(timeout time.Duration) bool { return true }

func (t *recordingTransport) FlushWithContext(ctx context.Context) bool { return true }

func (t *recordingTransport) Close() {}

func (t *recordingTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

func setupSentry(t *testing.T) *recordingTransport {
	t.Helper()

	transport := &recordingTransport{}
	gt.NoError(t, sentry.Init(sentry.ClientOptions{
		Dsn:       "https://public@sentry.example.com/1",
		Transport: transport,
	}))
	t.Cleanup(func() {
		sentry.CurrentHub().BindClient(nil)
	})

	return transport
}

func TestHandleReportsToSentry(t *testing.T) {
	transport := setupSentry(t)
	ctx := context.Background()

	cause := goerr.New("repository unavailable", goerr.V("backend", "firestore"))
	got := errutil.Handle(ctx, cause, "failed to load templates")
	gt.Value(t, got).Equal(cause)
	gt.Number(t, transport.count()).Equal(1)

	gt.NoError(t, errutil.Handle(ctx, nil, "no error"))
	gt.Number(t, transport.count()).Equal(1)
}

func TestHandleHTTPReportsServerErrorsOnly(t *testing.T) {
	transport := setupSentry(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	errutil.HandleHTTP(ctx, rec, goerr.New("invalid request body"), http.StatusBadRequest)
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	gt.Number(t, transport.count()).Equal(0)

	rec = httptest.NewRecorder()
	errutil.HandleHTTP(ctx, rec, goerr.New("repository write failed"), http.StatusInternalServerError)
	gt.Number(t, rec.Code).Equal(http.StatusInternalServerError)
	gt.Number(t, transport.count()).Equal(1)
}

func TestHandleWithoutSentryClient(t *testing.T) {
	sentry.CurrentHub().BindClient(nil)

	cause := goerr.New("no client configured")
	got := errutil.Handle(context.Background(), cause, "should only log")
	gt.Value(t, got).Equal(cause)
}
