package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/fyrsmithlabs/causewayd/internal/persona"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestDispatcher wires a dispatcher with separate scripted clients for
// the router and executor so call counts can be asserted per layer.
func newTestDispatcher(t *testing.T, routerChat, executorChat *fakeChatter) *Dispatcher {
	t.Helper()
	reg := testRegistry(t)

	executor, err := NewExecutor(executorChat, reg, zap.NewNop())
	require.NoError(t, err)

	d, err := NewDispatcher(NewRouter(routerChat, zap.NewNop()), executor, nil, zap.NewNop())
	require.NoError(t, err)
	return d
}

func TestDispatchValidation(t *testing.T) {
	d := newTestDispatcher(t, &fakeChatter{}, &fakeChatter{})

	_, err := d.Dispatch(context.Background(), Request{Persona: persona.Detective})
	assert.ErrorIs(t, err, ErrEmptyHistory)
}

func TestDispatchTrashShortCircuits(t *testing.T) {
	routerChat := &fakeChatter{responses: []string{`{"actor":"ACTOR_TRASH"}`}}
	executorChat := &fakeChatter{}
	d := newTestDispatcher(t, routerChat, executorChat)

	env, err := d.Dispatch(context.Background(), Request{
		History: []Turn{{Role: RoleUser, Content: "asdasd"}},
		Persona: persona.Detective,
		Locale:  persona.LocaleTR,
	})
	require.NoError(t, err)

	assert.Equal(t, IntentTrash, env.Intent)
	assert.Len(t, routerChat.requests, 1)
	assert.Empty(t, executorChat.requests, "no second LLM call for trash input")
}

func TestDispatchSmalltalk(t *testing.T) {
	routerChat := &fakeChatter{responses: []string{`{"actor":"ACTOR_FRIEND"}`}}
	executorChat := &fakeChatter{responses: []string{"İyidir, senden naber?"}}
	d := newTestDispatcher(t, routerChat, executorChat)

	env, err := d.Dispatch(context.Background(), Request{
		History: []Turn{{Role: RoleUser, Content: "naber"}},
		Persona: persona.Detective,
		Locale:  persona.LocaleTR,
	})
	require.NoError(t, err)

	assert.Equal(t, IntentChitchat, env.Intent)
	assert.Equal(t, 100, env.ConfidenceScore)
}

func TestDispatchThreeTurnDetectiveMemberScenario(t *testing.T) {
	routerResponses := []string{
		`{"actor":"ACTOR_DETECTIVE"}`,
		`{"actor":"ACTOR_DETECTIVE"}`,
		`{"actor":"ACTOR_DETECTIVE"}`,
	}
	executorResponses := []string{
		`{"intent":"DISCOVERY","confidence_score":30,"question":"Ne zamandır?","insight":null}`,
		`{"intent":"DISCOVERY","confidence_score":70,"question":"Başka kanıt var mı?","insight":null}`,
		`{"intent":"SOLUTION","confidence_score":100,"insight":"Kanıtlar net, verdict hazır.","question":null,"is_debatable":false,"debate_hook":null}`,
	}
	routerChat := &fakeChatter{responses: routerResponses}
	executorChat := &fakeChatter{responses: executorResponses}
	d := newTestDispatcher(t, routerChat, executorChat)

	history := []Turn{}
	lastScore := 0
	var env Envelope
	for turn := 0; turn < 3; turn++ {
		history = append(history, Turn{Role: RoleUser, Content: "Partnerim telefonunu gizliyor."})

		var err error
		env, err = d.Dispatch(context.Background(), Request{
			History: history,
			Persona: persona.Detective,
			Locale:  persona.LocaleTR,
			Mode:    ModeMember,
		})
		require.NoError(t, err)

		assert.GreaterOrEqual(t, env.ConfidenceScore, lastScore, "confidence must be monotonically non-decreasing")
		lastScore = env.ConfidenceScore

		history = append(history, Turn{Role: RoleAssistant, Content: "ok"})
	}

	assert.Equal(t, 100, env.ConfidenceScore)
	assert.Nil(t, env.Question)
	require.NotNil(t, env.Insight)
	assert.NotEmpty(t, *env.Insight)
	require.NotNil(t, env.IsDebatable, "final member verdict carries the debatable flag")
}

func TestDispatchDegradesOnProviderFailure(t *testing.T) {
	routerChat := &fakeChatter{errs: []error{errors.New("provider down")}}
	executorChat := &fakeChatter{errs: []error{errors.New("provider down")}}
	d := newTestDispatcher(t, routerChat, executorChat)

	env, err := d.Dispatch(context.Background(), Request{
		History: []Turn{{Role: RoleUser, Content: "İlişkim kötü gidiyor."}},
		Persona: persona.Detective,
		Locale:  persona.LocaleTR,
	})

	require.NoError(t, err, "provider failures never propagate as errors")
	require.NotNil(t, env.Insight)
	assert.NotEmpty(t, *env.Insight, "degraded envelope carries an in-character apology")
}

func TestDispatchDefaultsModeToGuest(t *testing.T) {
	routerChat := &fakeChatter{responses: []string{`{"actor":"ACTOR_DETECTIVE"}`}}
	executorChat := &fakeChatter{responses: []string{
		`{"confidence_score":100,"insight":"Teaser. 🔒 Tam analizi görmek için giriş yap."}`,
	}}
	d := newTestDispatcher(t, routerChat, executorChat)

	_, err := d.Dispatch(context.Background(), Request{
		History: []Turn{
			{Role: RoleUser, Content: "a"},
			{Role: RoleUser, Content: "b"},
			{Role: RoleUser, Content: "c"},
		},
		Persona: persona.Detective,
		Locale:  persona.LocaleTR,
	})
	require.NoError(t, err)

	system := executorChat.requests[0].Messages[0].Content
	assert.Contains(t, system, "GUEST MODE", "absent mode defaults to guest gating")
}
