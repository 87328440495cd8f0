package plugins

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/tgwire/internal/dispatch"
	"github.com/mattjoyce/tgwire/internal/update"
)

type fakeReplier struct {
	sent []string
	err  error
}

func (f *fakeReplier) SendMessage(ctx context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, fmt.Sprintf("%d:%s", chatID, text))
	return nil
}

func messageUpdate(t *testing.T, text string) *update.Update {
	t.Helper()
	u, err := update.Process(fmt.Sprintf(`{"update_id":1,"message":{"text":%q,"chat":{"id":42}}}`, text), "")
	require.NoError(t, err)
	return u
}

func TestPingRepliesAndStops(t *testing.T) {
	r := &fakeReplier{}
	p := Ping(r)

	res, err := p.Execute(context.Background(), messageUpdate(t, "/ping"), nil)
	require.NoError(t, err)
	assert.True(t, res.StopDispatch)
	assert.Equal(t, []string{"42:pong"}, r.sent)
}

func TestPingIgnoresOtherMessages(t *testing.T) {
	r := &fakeReplier{}
	p := Ping(r)

	res, err := p.Execute(context.Background(), messageUpdate(t, "hello"), nil)
	require.NoError(t, err)
	assert.False(t, res.StopDispatch)
	assert.Empty(t, r.sent)
}

func TestPingIgnoresNonMessageUpdates(t *testing.T) {
	u, err := update.Process(`{"update_id":2,"callback_query":{"id":"cb1"}}`, "")
	require.NoError(t, err)

	r := &fakeReplier{}
	res, execErr := Ping(r).Execute(context.Background(), u, nil)
	require.NoError(t, execErr)
	assert.False(t, res.StopDispatch)
	assert.Empty(t, r.sent)
}

func TestPingSurfacesSendErrors(t *testing.T) {
	r := &fakeReplier{err: errors.New("network down")}
	_, err := Ping(r).Execute(context.Background(), messageUpdate(t, "/ping"), nil)
	assert.Error(t, err)
}

func TestPingShortCircuitsSession(t *testing.T) {
	r := &fakeReplier{}
	ran := false
	after := dispatch.NewPlugin("after").OnAny(func(ctx context.Context, u *update.Update, emit dispatch.Sink) (dispatch.Result, error) {
		ran = true
		return dispatch.Result{}, nil
	})

	out := dispatch.New().AddPlugins(Ping(r), after).Resolve(context.Background(), messageUpdate(t, "/ping"))
	assert.True(t, out.Killed)
	assert.Equal(t, 1, out.PluginsRun)
	assert.False(t, ran)
}

func TestAuditLogNeverStops(t *testing.T) {
	res, err := AuditLog().Execute(context.Background(), messageUpdate(t, "anything"), nil)
	require.NoError(t, err)
	assert.False(t, res.StopDispatch)
}
